package parser

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
)

// parseExpression is the entry point for the full precedence-climbing
// expression grammar, from lowest to highest precedence:
//
//	assign (<-, right-assoc)
//	  logor      (||)
//	    logand     (&&)
//	      comparison (= != < <= > >=, non-assoc)
//	        additive   (+ -)
//	          multiplicative (* / %)
//	            member/call (., left-assoc)
//	              unary      (- !, prefix)
//	                primary
func (p *Parser) parseExpression() (*ast.Node, error) {
	return p.parseAssign()
}

// assign_expr := logor_expr ('<-' assign_expr)?
func (p *Parser) parseAssign() (*ast.Node, error) {
	lhs, err := p.parseLogOr()
	if err != nil {
		return nil, err
	}
	if p.isPunct(lexer.SymAssign) {
		pos := p.pos()
		p.advance()
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		node := ast.New(ast.RuleAssign, pos)
		node.AddChild(lhs)
		node.AddChild(rhs)
		return node, nil
	}
	return lhs, nil
}

func (p *Parser) parseLogOr() (*ast.Node, error) {
	lhs, err := p.parseLogAnd()
	if err != nil {
		return nil, err
	}
	for p.isPunct(lexer.SymLogOr) {
		pos := p.pos()
		p.advance()
		rhs, err := p.parseLogAnd()
		if err != nil {
			return nil, err
		}
		lhs = binary(ast.RuleLogOr, pos, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseLogAnd() (*ast.Node, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.isPunct(lexer.SymLogAnd) {
		pos := p.pos()
		p.advance()
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		lhs = binary(ast.RuleLogAnd, pos, lhs, rhs)
	}
	return lhs, nil
}

var comparisonRules = map[lexer.Symbol]ast.Rule{
	lexer.SymEquals:       ast.RuleEquals,
	lexer.SymNotEquals:    ast.RuleNotEquals,
	lexer.SymLess:         ast.RuleLess,
	lexer.SymLessEquals:   ast.RuleLessEquals,
	lexer.SymGreater:      ast.RuleGreater,
	lexer.SymGreaterEquals: ast.RuleGreaterEquals,
}

func (p *Parser) parseComparison() (*ast.Node, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	tok := p.cur()
	if tok != nil && tok.Kind == lexer.KindPunct {
		if rule, ok := comparisonRules[tok.Sym]; ok {
			pos := p.pos()
			p.advance()
			rhs, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return binary(rule, pos, lhs, rhs), nil
		}
	}
	return lhs, nil
}

func (p *Parser) parseAdditive() (*ast.Node, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if tok == nil || tok.Kind != lexer.KindPunct {
			break
		}
		var rule ast.Rule
		switch tok.Sym {
		case lexer.SymAdd:
			rule = ast.RuleAdd
		case lexer.SymSub:
			rule = ast.RuleSub
		default:
			return lhs, nil
		}
		pos := p.pos()
		p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = binary(rule, pos, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseMultiplicative() (*ast.Node, error) {
	lhs, err := p.parseMember()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if tok == nil || tok.Kind != lexer.KindPunct {
			break
		}
		var rule ast.Rule
		switch tok.Sym {
		case lexer.SymMul:
			rule = ast.RuleMul
		case lexer.SymDiv:
			rule = ast.RuleDiv
		case lexer.SymMod:
			rule = ast.RuleMod
		default:
			return lhs, nil
		}
		pos := p.pos()
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = binary(rule, pos, lhs, rhs)
	}
	return lhs, nil
}

// parseUnary handles the two prefix operators. Unary minus desugars to a
// sub node whose left operand is the any-type placeholder, so that the
// semantic analyzer's ordinary binary-subtraction typing rule also handles
// negation without a separate code path (spec.md §4.4's resolution of the
// "how is unary minus typed" open question).
func (p *Parser) parseUnary() (*ast.Node, error) {
	if p.isPunct(lexer.SymSub) {
		pos := p.pos()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node := ast.New(ast.RuleSub, pos)
		node.AddChild(ast.New(ast.RuleAnyType, pos))
		node.AddChild(operand)
		return node, nil
	}
	if p.isPunct(lexer.SymLogNot) {
		pos := p.pos()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node := ast.New(ast.RuleLogNot, pos)
		node.AddChild(operand)
		return node, nil
	}
	return p.parseMember()
}

// parseMember handles left-associative '.' chaining on top of a primary
// expression: `a.b.c(x)` parses as member(member(a, b), call(c, [x])).
func (p *Parser) parseMember() (*ast.Node, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct(lexer.SymDot) {
		pos := p.pos()
		p.advance()
		nameTok, err := p.expectKind(lexer.KindName)
		if err != nil {
			return nil, gserr.New(gserr.ParserMalformedExpression, pos, "expected name after '.'")
		}

		var rhs *ast.Node
		if p.isPunct(lexer.SymLParen) {
			rhs, err = p.parseCallArgs(nameTok.Name, pos)
			if err != nil {
				return nil, err
			}
		} else {
			rhs = ast.NewString(ast.RuleSymbolRef, pos, nameTok.Name)
		}

		member := ast.New(ast.RuleMember, pos)
		member.AddChild(lhs)
		member.AddChild(rhs)
		lhs = member
	}
	return lhs, nil
}

// primary := INT | FLOAT | STRING | CHAR | TRUE | FALSE
//          | NEW type_expr '(' args? ')'
//          | DEFAULT '(' type_expr ')'
//          | name ('(' args? ')')?
//          | '(' expr ')'
func (p *Parser) parsePrimary() (*ast.Node, error) {
	pos := p.pos()
	tok := p.cur()
	if tok == nil {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		return nil, gserr.New(gserr.ParserUnexpectedEOF, pos, "unexpected end of file in expression")
	}

	switch tok.Kind {
	case lexer.KindInt:
		p.advance()
		return ast.NewInt(ast.RuleIntLiteral, pos, tok.Int), nil
	case lexer.KindFloat:
		p.advance()
		return ast.NewFloat(ast.RuleFloatLiteral, pos, tok.Float), nil
	case lexer.KindString:
		p.advance()
		return ast.NewString(ast.RuleStringLiteral, pos, tok.Str), nil
	case lexer.KindChar:
		p.advance()
		return ast.NewChar(pos, tok.Char), nil
	case lexer.KindKeyword:
		switch tok.Sym {
		case lexer.SymTrue:
			p.advance()
			return ast.NewBool(ast.RuleBoolLiteral, pos, true), nil
		case lexer.SymFalse:
			p.advance()
			return ast.NewBool(ast.RuleBoolLiteral, pos, false), nil
		case lexer.SymNew:
			return p.parseNew()
		case lexer.SymDefault:
			return p.parseDefault()
		}
	case lexer.KindName:
		p.advance()
		if p.isPunct(lexer.SymLParen) {
			return p.parseCallArgs(tok.Name, pos)
		}
		return ast.NewString(ast.RuleSymbolRef, pos, tok.Name), nil
	case lexer.KindPunct:
		if tok.Sym == lexer.SymLParen {
			p.advance()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(lexer.SymRParen); err != nil {
				return nil, err
			}
			expr := ast.New(ast.RuleExpression, pos)
			expr.AddChild(inner)
			return expr, nil
		}
	}

	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return nil, gserr.New(gserr.ParserMalformedExpression, pos, "unexpected token %s in expression", tokenDesc(tok))
}

// new_expr := NEW type_expr '(' args? ')'
func (p *Parser) parseNew() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // NEW
	typeNode, err := p.parseTypeExpr()
	if err != nil {
		return nil, gserr.Wrap(gserr.ParserMalformedExpression, pos, err, "malformed type in 'new' expression")
	}
	if !p.isPunct(lexer.SymLParen) {
		return nil, gserr.New(gserr.ParserMalformedExpression, p.pos(), "expected '(' after 'new' type")
	}
	args, err := p.parseCallParameters()
	if err != nil {
		return nil, err
	}
	node := ast.New(ast.RuleNew, pos)
	node.AddChild(typeNode)
	node.AddChild(args)
	return node, nil
}

// default_expr := DEFAULT '(' type_expr ')'
func (p *Parser) parseDefault() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // DEFAULT
	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}
	typeNode, err := p.parseTypeExpr()
	if err != nil {
		return nil, gserr.Wrap(gserr.ParserMalformedExpression, pos, err, "malformed type in 'default' expression")
	}
	if err := p.expectPunct(lexer.SymRParen); err != nil {
		return nil, err
	}
	node := ast.New(ast.RuleDefault, pos)
	node.AddChild(typeNode)
	return node, nil
}

// parseCallArgs builds a call node for `name(args)`, where name has
// already been consumed.
func (p *Parser) parseCallArgs(name string, pos gserr.Position) (*ast.Node, error) {
	args, err := p.parseCallParameters()
	if err != nil {
		return nil, err
	}
	call := ast.New(ast.RuleCall, pos)
	call.AddChild(ast.NewString(ast.RuleName, pos, name))
	call.AddChild(args)
	return call, nil
}

// call_parameters := '(' (expr (',' expr)*)? ')'
func (p *Parser) parseCallParameters() (*ast.Node, error) {
	pos := p.pos()
	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}
	params := ast.New(ast.RuleCallParameters, pos)
	if !p.isPunct(lexer.SymRParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			params.AddChild(arg)
			if p.isPunct(lexer.SymComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(lexer.SymRParen); err != nil {
		return nil, err
	}
	return params, nil
}

func binary(rule ast.Rule, pos gserr.Position, lhs, rhs *ast.Node) *ast.Node {
	node := ast.New(rule, pos)
	node.AddChild(lhs)
	node.AddChild(rhs)
	return node
}
