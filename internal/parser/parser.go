// Package parser implements a hand-written recursive-descent parser that
// turns a token stream from internal/lexer into the AST vocabulary defined
// in internal/ast, using precedence climbing for expressions.
package parser

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/symbols"
)

// Parser holds the lexer driving tokenization and produces an *ast.Node
// tree rooted at a "module" node. On any syntax error the already-built
// subtree for the construct in progress is dropped and the error is
// returned to the caller; there is no error recovery mid-parse.
type Parser struct {
	lx     *lexer.Lexer
	lexErr error
}

// New creates a Parser reading from lx.
func New(lx *lexer.Lexer) *Parser {
	return &Parser{lx: lx}
}

// ParseModule parses an entire source file:
//
//	module := PACKAGE string SEMI depends* spec_or_function*
func (p *Parser) ParseModule() (*ast.Node, error) {
	pos := p.pos()

	if !p.isKeyword(lexer.SymPackage) {
		return nil, gserr.New(gserr.ParserMissingPackage, pos, "expected 'package' declaration")
	}
	p.advance()

	pkgTok, err := p.expectKind(lexer.KindString)
	if err != nil {
		return nil, err
	}
	if !validPackageName(pkgTok.Str) {
		return nil, gserr.New(gserr.ParserBadPackageName, pos, "invalid package name %q", pkgTok.Str)
	}
	nameNode := ast.NewString(ast.RuleName, pos, pkgTok.Str)

	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}

	module := ast.New(ast.RuleModule, pos)
	module.AddChild(nameNode)

	for p.isKeyword(lexer.SymDepends) {
		dep, err := p.parseDepends()
		if err != nil {
			return nil, err
		}
		module.AddChild(dep)
	}

	specs := ast.New(ast.RuleSpecs, pos)
	funcs := ast.New(ast.RuleFunctions, pos)

	for p.cur() != nil {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		child, isSpec, err := p.parseSpecOrFunction()
		if err != nil {
			return nil, err
		}
		if isSpec {
			specs.AddChild(child)
		} else {
			funcs.AddChild(child)
		}
	}

	module.AddChild(specs)
	module.AddChild(funcs)

	return module, nil
}

// validPackageName rejects an empty name and names with a leading or
// trailing dot (an empty segment between two dots is left to the semantic
// analyzer's package-name check), matching the negative scenario `package ".Foo";` in spec.md §8.
func validPackageName(name string) bool {
	if name == "" {
		return false
	}
	if name[0] == '.' || name[len(name)-1] == '.' {
		return false
	}
	return true
}

// depends := DEPENDS string SEMI
func (p *Parser) parseDepends() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // DEPENDS

	tok, err := p.expectKind(lexer.KindString)
	if err != nil {
		return nil, gserr.New(gserr.ParserMalformedDepends, pos, "expected string after 'depends'")
	}
	if !validPackageName(tok.Str) {
		return nil, gserr.New(gserr.ParserMalformedDepends, pos, "invalid depends name %q", tok.Str)
	}
	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}
	return ast.NewString(ast.RuleDepends, pos, tok.Str), nil
}

// spec_or_function := access spec_def | function_def
func (p *Parser) parseSpecOrFunction() (node *ast.Node, isSpec bool, err error) {
	pos := p.pos()
	access, err := p.parseAccessModifier()
	if err != nil {
		return nil, false, err
	}

	if p.isKeyword(lexer.SymSpec) {
		spec, err := p.parseSpecBody(access, pos)
		return spec, true, err
	}

	fn, err := p.parseFunctionBody(access, pos)
	return fn, false, err
}

// parseAccessModifier consumes a required leading access-modifier token.
// The grammar has no implicit default: every spec, module-level function,
// and member function declares one explicitly.
func (p *Parser) parseAccessModifier() (*ast.Node, error) {
	pos := p.pos()
	tok := p.cur()
	if tok == nil || tok.Kind != lexer.KindAccessModifier {
		return nil, gserr.New(gserr.ParserUnexpectedToken, pos, "expected access modifier, got %s", tokenDesc(tok))
	}
	p.advance()
	return ast.NewSymbol(ast.RuleAccessModifier, pos, tok.Sym), nil
}

// spec_def := SPEC type_expr LBRACE (function_def | property)* RBRACE
// (access modifier already consumed by the caller)
func (p *Parser) parseSpecBody(access *ast.Node, pos gserr.Position) (*ast.Node, error) {
	p.advance() // SPEC

	typeNode, err := p.parseTypeExpr()
	if err != nil {
		return nil, gserr.Wrap(gserr.ParserMalformedSpec, pos, err, "malformed spec type")
	}

	if err := p.expectPunct(lexer.SymLBrace); err != nil {
		return nil, err
	}

	funcs := ast.New(ast.RuleFunctions, pos)
	props := ast.New(ast.RuleProperties, pos)

	for !p.isPunct(lexer.SymRBrace) {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		if p.cur() == nil {
			return nil, gserr.New(gserr.ParserUnexpectedEOF, p.pos(), "unexpected end of file in spec body")
		}
		// A property declaration has no leading access modifier (only its
		// getter/setter does); a member function always does. That single
		// token is enough to dispatch without backtracking.
		if p.cur().Kind != lexer.KindAccessModifier {
			prop, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			props.AddChild(prop)
			continue
		}

		memberPos := p.pos()
		memberAccess, err := p.parseAccessModifier()
		if err != nil {
			return nil, err
		}
		fn, err := p.parseFunctionBody(memberAccess, memberPos)
		if err != nil {
			return nil, err
		}
		funcs.AddChild(fn)
	}
	p.advance() // RBRACE

	spec := ast.New(ast.RuleSpec, pos)
	spec.AddChild(access)
	spec.AddChild(typeNode)
	spec.AddChild(funcs)
	spec.AddChild(props)
	return spec, nil
}

// property := type_expr name LBRACE prop_fn? prop_fn? RBRACE
func (p *Parser) parseProperty() (*ast.Node, error) {
	pos := p.pos()
	typeNode, err := p.parseTypeExpr()
	if err != nil {
		return nil, gserr.Wrap(gserr.ParserMalformedProperty, pos, err, "malformed property type")
	}
	nameTok, err := p.expectKind(lexer.KindName)
	if err != nil {
		return nil, gserr.New(gserr.ParserMalformedProperty, pos, "expected property name")
	}
	nameNode := ast.NewString(ast.RuleName, pos, nameTok.Name)

	if err := p.expectPunct(lexer.SymLBrace); err != nil {
		return nil, err
	}

	var getter, setter *ast.Node
	for i := 0; i < 2 && !p.isPunct(lexer.SymRBrace); i++ {
		fnPos := p.pos()
		access, err := p.parseAccessModifier()
		if err != nil {
			return nil, err
		}
		var kind lexer.Symbol
		switch {
		case p.isKeyword(lexer.SymGet):
			kind = lexer.SymGet
		case p.isKeyword(lexer.SymSet):
			kind = lexer.SymSet
		default:
			return nil, gserr.New(gserr.ParserMalformedProperty, fnPos, "expected 'get' or 'set'")
		}
		p.advance()

		var body *ast.Node
		if p.isPunct(lexer.SymSemicolon) {
			p.advance()
		} else {
			body, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}

		propFn := ast.New(ast.RulePropertyFunction, fnPos)
		propFn.AddChild(access)
		if body != nil {
			propFn.AddChild(body)
		}

		if kind == lexer.SymGet {
			if getter != nil {
				return nil, gserr.New(gserr.ParserMalformedProperty, fnPos, "duplicate getter")
			}
			getter = propFn
		} else {
			if setter != nil {
				return nil, gserr.New(gserr.ParserMalformedProperty, fnPos, "duplicate setter")
			}
			setter = propFn
		}
	}

	if err := p.expectPunct(lexer.SymRBrace); err != nil {
		return nil, err
	}

	prop := ast.New(ast.RuleProperty, pos)
	prop.AddChild(typeNode)
	prop.AddChild(nameNode)
	prop.AddChild(getter)
	prop.AddChild(setter)
	return prop, nil
}

// function_def := NATIVE? (type_expr name | CONSTRUCT) LPAREN params? RPAREN (block | SEMICOLON)
// (access modifier already consumed by the caller)
func (p *Parser) parseFunctionBody(access *ast.Node, pos gserr.Position) (*ast.Node, error) {
	native := false
	if p.isKeyword(lexer.SymNative) {
		native = true
		p.advance()
	}
	nativeNode := ast.NewBool(ast.RuleNative, pos, native)

	var typeNode, nameNode *ast.Node
	if p.isKeyword(lexer.SymConstruct) {
		cpos := p.pos()
		p.advance()
		typeNode = ast.NewString(ast.RuleType, cpos, "void")
		nameNode = ast.NewString(ast.RuleName, cpos, symbols.ConstructorName())
	} else {
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, gserr.Wrap(gserr.ParserMalformedFunction, pos, err, "malformed function return type")
		}
		nameTok, err := p.expectKind(lexer.KindName)
		if err != nil {
			return nil, gserr.New(gserr.ParserMalformedFunction, pos, "expected function name")
		}
		typeNode = t
		nameNode = ast.NewString(ast.RuleName, pos, nameTok.Name)
	}

	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}
	params := ast.New(ast.RuleFunctionParameters, pos)
	if !p.isPunct(lexer.SymRParen) {
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params.AddChild(param)
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

	var block *ast.Node
	if native {
		if err := p.expectPunct(lexer.SymSemicolon); err != nil {
			return nil, gserr.New(gserr.ParserMalformedFunction, pos, "native function must end with ';'")
		}
		block = ast.New(ast.RuleBlock, pos)
	} else {
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		block = b
	}

	fn := ast.New(ast.RuleFunction, pos)
	fn.AddChild(access)
	fn.AddChild(nativeNode)
	fn.AddChild(typeNode)
	fn.AddChild(nameNode)
	fn.AddChild(params)
	fn.AddChild(block)
	return fn, nil
}

// param := type_expr name
func (p *Parser) parseParam() (*ast.Node, error) {
	pos := p.pos()
	t, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(lexer.KindName)
	if err != nil {
		return nil, gserr.New(gserr.ParserMalformedFunction, pos, "expected parameter name")
	}
	param := ast.New(ast.RuleFunctionParameter, pos)
	param.AddChild(t)
	param.AddChild(ast.NewString(ast.RuleName, pos, nameTok.Name))
	return param, nil
}

// type_expr := NAME ('<' type_expr (',' type_expr)* '>')?
func (p *Parser) parseTypeExpr() (*ast.Node, error) {
	pos := p.pos()
	nameTok, err := p.expectKind(lexer.KindName)
	if err != nil {
		return nil, gserr.New(gserr.ParserUnexpectedToken, pos, "expected type name, got %s", tokenDesc(p.cur()))
	}
	typeNode := ast.NewString(ast.RuleType, pos, nameTok.Name)

	if p.isPunct(lexer.SymLess) {
		p.advance()
		for {
			param, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			typeNode.AddChild(param)
			if p.isPunct(lexer.SymComma) {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectPunct(lexer.SymGreater); err != nil {
			return nil, err
		}
	}
	return typeNode, nil
}

// block := LBRACE statement* RBRACE
func (p *Parser) parseBlock() (*ast.Node, error) {
	pos := p.pos()
	if err := p.expectPunct(lexer.SymLBrace); err != nil {
		return nil, gserr.New(gserr.ParserMalformedBlock, pos, "expected '{'")
	}
	block := ast.New(ast.RuleBlock, pos)
	for !p.isPunct(lexer.SymRBrace) {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		if p.cur() == nil {
			return nil, gserr.New(gserr.ParserUnexpectedEOF, p.pos(), "unexpected end of file in block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.AddChild(stmt)
	}
	p.advance() // RBRACE
	return block, nil
}

// statement := block | if_stmt | while_stmt | for_stmt | return_stmt | name_stmt
func (p *Parser) parseStatement() (*ast.Node, error) {
	switch {
	case p.isPunct(lexer.SymLBrace):
		return p.parseBlock()
	case p.isKeyword(lexer.SymIf):
		return p.parseIf()
	case p.isKeyword(lexer.SymWhile):
		return p.parseWhile()
	case p.isKeyword(lexer.SymFor):
		return p.parseFor()
	case p.isKeyword(lexer.SymReturn):
		return p.parseReturn()
	default:
		return p.parseNameStatement()
	}
}

// if_stmt := IF '(' expr ')' block (ELSE (if_stmt | block))?
func (p *Parser) parseIf() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // IF
	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(lexer.SymRParen); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := ast.New(ast.RuleIf, pos)
	node.AddChild(cond)
	node.AddChild(thenBlock)

	if p.isKeyword(lexer.SymElse) {
		p.advance()
		var elseNode *ast.Node
		if p.isKeyword(lexer.SymIf) {
			elseNode, err = p.parseIf()
		} else {
			elseNode, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
		node.AddChild(elseNode)
	}
	return node, nil
}

// while_stmt := WHILE '(' expr ')' block, desugared into the four-child
// for layout with no init and no update.
func (p *Parser) parseWhile() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // WHILE
	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(lexer.SymRParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := ast.New(ast.RuleFor, pos)
	node.AddChild(ast.New(ast.RuleLoopInitialize, pos))
	condWrap := ast.New(ast.RuleLoopCondition, pos)
	condWrap.AddChild(cond)
	node.AddChild(condWrap)
	node.AddChild(ast.New(ast.RuleLoopUpdate, pos))
	node.AddChild(body)
	return node, nil
}

// for_stmt := FOR '(' expr? ';' expr? ';' expr? ')' block
func (p *Parser) parseFor() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // FOR
	if err := p.expectPunct(lexer.SymLParen); err != nil {
		return nil, err
	}

	initWrap := ast.New(ast.RuleLoopInitialize, pos)
	if !p.isPunct(lexer.SymSemicolon) {
		initStmt, err := p.parseAssignOrCallExpr()
		if err != nil {
			return nil, err
		}
		initWrap.AddChild(initStmt)
	}
	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}

	condWrap := ast.New(ast.RuleLoopCondition, pos)
	if !p.isPunct(lexer.SymSemicolon) {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		condWrap.AddChild(cond)
	}
	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}

	updateWrap := ast.New(ast.RuleLoopUpdate, pos)
	if !p.isPunct(lexer.SymRParen) {
		update, err := p.parseAssignOrCallExpr()
		if err != nil {
			return nil, err
		}
		updateWrap.AddChild(update)
	}
	if err := p.expectPunct(lexer.SymRParen); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := ast.New(ast.RuleFor, pos)
	node.AddChild(initWrap)
	node.AddChild(condWrap)
	node.AddChild(updateWrap)
	node.AddChild(body)
	return node, nil
}

// return_stmt := RETURN expr? SEMI
func (p *Parser) parseReturn() (*ast.Node, error) {
	pos := p.pos()
	p.advance() // RETURN
	node := ast.New(ast.RuleReturn, pos)
	if !p.isPunct(lexer.SymSemicolon) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		node.AddChild(expr)
	}
	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}
	return node, nil
}

// name_stmt := assign_expr SEMI; the resulting expression must itself
// resolve to a call or an assignment (the name-statement grammar rule
// forbids bare expression statements like "3 + 4;" which would have no
// effect).
func (p *Parser) parseNameStatement() (*ast.Node, error) {
	pos := p.pos()
	expr, err := p.parseAssignOrCallExpr()
	if err != nil {
		return nil, err
	}
	if !isCallOrAssign(expr) {
		return nil, gserr.New(gserr.ParserIncompleteNameStatement, pos,
			"statement must be a call or assignment")
	}
	if err := p.expectPunct(lexer.SymSemicolon); err != nil {
		return nil, err
	}
	return expr, nil
}

func isCallOrAssign(n *ast.Node) bool {
	switch n.Rule {
	case ast.RuleAssign, ast.RuleCall:
		return true
	case ast.RuleMember:
		// x.f(args) is a member node whose right child is a call.
		return n.ChildCount() == 2 && n.Child(1).Rule == ast.RuleCall
	default:
		return false
	}
}

// parseAssignOrCallExpr parses a full expression (used both as a
// statement's expression and as for-loop init/update clauses, which in
// this grammar are always assignment or call expressions too).
func (p *Parser) parseAssignOrCallExpr() (*ast.Node, error) {
	return p.parseExpression()
}
