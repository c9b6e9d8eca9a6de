package parser

import (
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
)

func (p *Parser) cur() *lexer.Token {
	return p.lx.Current()
}

func (p *Parser) pos() gserr.Position {
	return p.lx.Pos()
}

// advance discards the current token and pulls the next one in. A lexical
// failure reading the new token is latched in p.lexErr rather than
// returned here, since most call sites only care about consuming a token
// they already validated via isKeyword/isPunct; expectKind/expectPunct and
// the expression primary fall-through surface the latched error in place
// of a confusing "unexpected token" message.
func (p *Parser) advance() {
	if _, err := p.lx.AdvanceNext(); err != nil && p.lexErr == nil {
		p.lexErr = err
	}
}

func (p *Parser) isKeyword(sym lexer.Symbol) bool {
	tok := p.cur()
	return tok != nil && tok.Kind == lexer.KindKeyword && tok.Sym == sym
}

func (p *Parser) isPunct(sym lexer.Symbol) bool {
	tok := p.cur()
	return tok != nil && tok.Kind == lexer.KindPunct && tok.Sym == sym
}

func (p *Parser) expectPunct(sym lexer.Symbol) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	tok := p.cur()
	if tok == nil || tok.Kind != lexer.KindPunct || tok.Sym != sym {
		code := gserr.ParserUnexpectedToken
		if sym == lexer.SymSemicolon {
			code = gserr.ParserExpectedSemicolon
		}
		return gserr.New(code, p.pos(), "expected %s, got %s", sym, tokenDesc(tok))
	}
	p.advance()
	if p.lexErr != nil {
		return p.lexErr
	}
	return nil
}

func (p *Parser) expectKind(kind lexer.Kind) (*lexer.Token, error) {
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	tok := p.cur()
	if tok == nil || tok.Kind != kind {
		return nil, gserr.New(gserr.ParserUnexpectedToken, p.pos(), "expected %s, got %s", kind, tokenDesc(tok))
	}
	p.advance()
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return tok, nil
}

func tokenDesc(tok *lexer.Token) string {
	if tok == nil {
		return "end of file"
	}
	return tok.String()
}
