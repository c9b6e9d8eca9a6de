// Package lexer streams Gunderscript source into a two-token look-ahead
// token sequence with precise line/column tracking, string escape
// handling, and keyword classification.
package lexer

import (
	"strconv"
	"strings"

	"github.com/gundermanc/gsc/internal/charsrc"
	"github.com/gundermanc/gsc/internal/gserr"
)

// Lexer produces Tokens from a charsrc.Source with one token of look-ahead.
// Current and Next may each be nil, meaning end-of-input has been reached
// at that position in the window. The position reported by Pos always
// gives the location of the first character of Current, driving error
// messages raised elsewhere in the pipeline.
type Lexer struct {
	src charsrc.Source

	current *Token
	next    *Token

	line, column int // position of the next unread character
}

// New constructs a Lexer over src and primes its two-token window by
// scanning the first two tokens immediately. Returns a *gserr.Error on any
// lexical failure encountered while priming.
func New(src charsrc.Source) (*Lexer, error) {
	lx := &Lexer{src: src, line: 1, column: 1}

	first, err := lx.scan()
	if err != nil {
		return nil, err
	}
	lx.current = first

	second, err := lx.scan()
	if err != nil {
		return nil, err
	}
	lx.next = second

	return lx, nil
}

// Current returns the current token, or nil if the window has reached
// end-of-input.
func (lx *Lexer) Current() *Token {
	return lx.current
}

// Next returns the token after current, or nil if there is no token after
// it (including when current itself is nil).
func (lx *Lexer) Next() *Token {
	return lx.next
}

// Pos returns the (line, column) of the first character of the current
// token. If Current is nil (end-of-input), it gives the position where the
// next token would have started.
func (lx *Lexer) Pos() gserr.Position {
	if lx.current != nil {
		return gserr.Position{Line: lx.current.Line, Column: lx.current.Column}
	}
	return gserr.Position{Line: lx.line, Column: lx.column}
}

// AdvanceNext moves the look-ahead window forward by one token: the former
// Next becomes the new Current, and a new token is scanned into Next. It
// returns the new Current.
func (lx *Lexer) AdvanceNext() (*Token, error) {
	lx.current = lx.next

	tok, err := lx.scan()
	if err != nil {
		return nil, err
	}
	lx.next = tok

	return lx.current, nil
}

// --- character-level primitives ---

func (lx *Lexer) peek() rune {
	return lx.src.Peek()
}

func (lx *Lexer) hasChar() bool {
	return lx.src.HasNext()
}

// advanceChar consumes the current source character and returns it,
// updating line/column bookkeeping to point at the character that
// follows.
func (lx *Lexer) advanceChar() rune {
	c := lx.src.Advance()
	if c == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return c
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// scan skips whitespace and comments, then lexes the next token, or
// returns (nil, nil) at end-of-input.
func (lx *Lexer) scan() (*Token, error) {
	for {
		for lx.hasChar() && isSpace(lx.peek()) {
			lx.advanceChar()
		}
		if !lx.hasChar() {
			return nil, nil
		}
		if lx.peek() != '/' {
			break
		}

		startLine, startCol := lx.line, lx.column
		lx.advanceChar() // consume the leading '/'

		switch {
		case lx.hasChar() && lx.peek() == '/':
			lx.advanceChar()
			for lx.hasChar() && lx.peek() != '\n' {
				lx.advanceChar()
			}
			if lx.hasChar() {
				lx.advanceChar() // consume trailing newline
			}
			continue // back to whitespace-skip loop

		case lx.hasChar() && lx.peek() == '*':
			lx.advanceChar()
			if err := lx.skipBlockComment(startLine, startCol); err != nil {
				return nil, err
			}
			continue

		default:
			// Not a comment: emit DIV/DIVEQUALS for the '/' already
			// consumed.
			tok := lx.withSuffix('=', SymDivEquals, SymDiv)
			tok.Line, tok.Column = startLine, startCol
			return tok, nil
		}
	}

	startLine, startCol := lx.line, lx.column
	tok, err := lx.scanToken()
	if err != nil {
		return nil, err
	}
	tok.Line = startLine
	tok.Column = startCol
	return tok, nil
}

func (lx *Lexer) skipBlockComment(startLine, startCol int) error {
	for {
		if !lx.hasChar() {
			return gserr.New(gserr.LexerUnterminatedComment,
				gserr.Position{Line: startLine, Column: startCol}, "unterminated comment")
		}
		if lx.peek() == '*' {
			lx.advanceChar()
			if lx.hasChar() && lx.peek() == '/' {
				lx.advanceChar()
				return nil
			}
			continue
		}
		lx.advanceChar()
	}
}

func punctToken(sym Symbol) *Token {
	return &Token{Kind: KindPunct, Sym: sym}
}

// withSuffix consumes a trailing `suffix` rune if present and returns the
// `withSuffixSym` token, otherwise returns `withoutSym`. The first
// character of the operator must already have been consumed by the
// caller, matching the two-char-operator maximal-munch rule: a two-char
// operator is recognized whenever its second character matches.
func (lx *Lexer) withSuffix(suffix rune, withSuffixSym, withoutSym Symbol) *Token {
	if lx.hasChar() && lx.peek() == suffix {
		lx.advanceChar()
		return punctToken(withSuffixSym)
	}
	return punctToken(withoutSym)
}

// scanToken dispatches on the next unconsumed, non-whitespace,
// non-comment-introducing character and produces exactly one token,
// consuming every character that belongs to it.
func (lx *Lexer) scanToken() (*Token, error) {
	startLine, startCol := lx.line, lx.column

	switch c := lx.peek(); {
	case c == '"':
		return lx.scanString()
	case c == '\'':
		return lx.scanChar()
	case c == '<':
		lx.advanceChar()
		if lx.hasChar() && lx.peek() == '-' {
			lx.advanceChar()
			if lx.hasChar() && lx.peek() == '>' {
				lx.advanceChar()
				return punctToken(SymSwap), nil
			}
			return punctToken(SymAssign), nil
		}
		return lx.withSuffix('=', SymLessEquals, SymLess), nil
	case c == '>':
		lx.advanceChar()
		return lx.withSuffix('=', SymGreaterEquals, SymGreater), nil
	case c == '+':
		lx.advanceChar()
		return lx.withSuffix('=', SymAddEquals, SymAdd), nil
	case c == '-':
		lx.advanceChar()
		return lx.withSuffix('=', SymSubEquals, SymSub), nil
	case c == '*':
		lx.advanceChar()
		return lx.withSuffix('=', SymMulEquals, SymMul), nil
	case c == '%':
		lx.advanceChar()
		return lx.withSuffix('=', SymModEquals, SymMod), nil
	case c == '(':
		lx.advanceChar()
		return punctToken(SymLParen), nil
	case c == ')':
		lx.advanceChar()
		return punctToken(SymRParen), nil
	case c == '{':
		lx.advanceChar()
		return punctToken(SymLBrace), nil
	case c == '}':
		lx.advanceChar()
		return punctToken(SymRBrace), nil
	case c == '.':
		lx.advanceChar()
		return punctToken(SymDot), nil
	case c == ';':
		lx.advanceChar()
		return punctToken(SymSemicolon), nil
	case c == ',':
		lx.advanceChar()
		return punctToken(SymComma), nil
	case c == '|':
		lx.advanceChar()
		if lx.hasChar() && lx.peek() == '|' {
			lx.advanceChar()
			return punctToken(SymLogOr), nil
		}
		return nil, gserr.New(gserr.LexerNoMatch, gserr.Position{Line: startLine, Column: startCol},
			"unrecognized character '|' (did you mean '||'?)")
	case c == '&':
		lx.advanceChar()
		if lx.hasChar() && lx.peek() == '&' {
			lx.advanceChar()
			return punctToken(SymLogAnd), nil
		}
		return nil, gserr.New(gserr.LexerNoMatch, gserr.Position{Line: startLine, Column: startCol},
			"unrecognized character '&' (did you mean '&&'?)")
	case c == '=':
		lx.advanceChar()
		return punctToken(SymEquals), nil
	case c == '!':
		lx.advanceChar()
		return lx.withSuffix('=', SymNotEquals, SymLogNot), nil
	case isDigit(c):
		return lx.scanNumber()
	case isAlpha(c) || c == '_':
		return lx.scanName()
	default:
		return nil, gserr.New(gserr.LexerNoMatch, gserr.Position{Line: startLine, Column: startCol},
			"unrecognized character %q", c)
	}
}

// scanString lexes a "..." literal with backslash escapes. Escapes
// recognized: \' \" \? \\ \b \n \t \r \v \f.
func (lx *Lexer) scanString() (*Token, error) {
	startLine, startCol := lx.line, lx.column
	lx.advanceChar() // consume opening quote

	var sb strings.Builder
	for {
		if !lx.hasChar() {
			return nil, gserr.New(gserr.LexerUnterminatedString,
				gserr.Position{Line: startLine, Column: startCol}, "unterminated string literal")
		}

		switch lx.peek() {
		case '\\':
			lx.advanceChar()
			if !lx.hasChar() {
				return nil, gserr.New(gserr.LexerUnterminatedString,
					gserr.Position{Line: startLine, Column: startCol}, "unterminated string literal")
			}
			esc := lx.peek()
			var repl byte
			switch esc {
			case '\'':
				repl = '\''
			case '"':
				repl = '"'
			case '?':
				repl = '?'
			case '\\':
				repl = '\\'
			case 'b':
				repl = '\b'
			case 'n':
				repl = '\n'
			case 't':
				repl = '\t'
			case 'r':
				repl = '\r'
			case 'v':
				repl = '\v'
			case 'f':
				repl = '\f'
			default:
				return nil, gserr.New(gserr.LexerBadEscape,
					gserr.Position{Line: lx.line, Column: lx.column}, "unknown escape sequence \\%c", esc)
			}
			sb.WriteByte(repl)
			lx.advanceChar()
		case '\n':
			return nil, gserr.New(gserr.LexerNewlineInString,
				gserr.Position{Line: startLine, Column: startCol}, "newline in unterminated string literal")
		case '"':
			lx.advanceChar()
			return &Token{Kind: KindString, Str: sb.String()}, nil
		default:
			sb.WriteByte(byte(lx.peek()))
			lx.advanceChar()
		}
	}
}

// scanChar lexes a 'c' literal: exactly one source character between
// quotes.
func (lx *Lexer) scanChar() (*Token, error) {
	startLine, startCol := lx.line, lx.column
	pos := gserr.Position{Line: startLine, Column: startCol}

	lx.advanceChar() // consume opening quote
	if !lx.hasChar() {
		return nil, gserr.New(gserr.LexerBadChar, pos, "unterminated char literal")
	}
	c := lx.advanceChar()
	if !lx.hasChar() || lx.peek() != '\'' {
		return nil, gserr.New(gserr.LexerBadChar, pos, "char literal must contain exactly one character")
	}
	lx.advanceChar() // consume closing quote

	return &Token{Kind: KindChar, Char: byte(c)}, nil
}

// scanName lexes [A-Za-z_][A-Za-z0-9_]* and classifies it against the
// keyword table.
func (lx *Lexer) scanName() (*Token, error) {
	var sb strings.Builder
	for lx.hasChar() && (isAlpha(lx.peek()) || isDigit(lx.peek()) || lx.peek() == '_') {
		sb.WriteRune(lx.advanceChar())
	}
	name := sb.String()

	if kw, ok := keywords[name]; ok {
		return &Token{Kind: kw.kind, Sym: kw.sym}, nil
	}
	return &Token{Kind: KindName, Name: name}, nil
}

// scanNumber lexes a greedy digit run with at most one '.'; presence of
// '.' makes it a float, otherwise an int.
func (lx *Lexer) scanNumber() (*Token, error) {
	startLine, startCol := lx.line, lx.column
	pos := gserr.Position{Line: startLine, Column: startCol}

	var sb strings.Builder
	seenDot := false
	for lx.hasChar() && (isDigit(lx.peek()) || lx.peek() == '.') {
		if lx.peek() == '.' {
			if seenDot {
				break
			}
			seenDot = true
		}
		sb.WriteRune(lx.advanceChar())
	}
	text := sb.String()

	if seenDot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, gserr.New(gserr.LexerBadNumber, pos, "malformed float literal %q", text)
		}
		return &Token{Kind: KindFloat, Float: f}, nil
	}

	i, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return nil, gserr.New(gserr.LexerBadNumber, pos, "integer literal %q out of 32-bit range", text)
	}
	return &Token{Kind: KindInt, Int: i}, nil
}
