package lexer

import "fmt"

// Kind is the tag of a Token: which of the payload fields is valid.
type Kind int

const (
	KindAccessModifier Kind = iota
	KindKeyword
	KindPunct
	KindName
	KindInt
	KindFloat
	KindString
	KindChar
)

var kindNames = [...]string{
	"ACCESS_MODIFIER", "KEYWORD", "SYMBOL", "NAME", "INT", "FLOAT", "STRING", "CHAR",
}

// String gives the canonical name of the Kind.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Token is a lexeme read from source, tagged with its Kind, and carrying
// exactly one of the payload fields, as well as the (line, column) its
// first character appeared at.
//
// A Token produced by the Lexer owns any heap data in its payload (the
// Name/Str fields) for its own lifetime; copying a Token value copies that
// ownership too, since Go strings are immutable and safely shared.
type Token struct {
	Kind   Kind
	Line   int
	Column int

	Sym   Symbol // valid for KindAccessModifier, KindKeyword, KindPunct
	Name  string // valid for KindName
	Str   string // valid for KindString
	Int   int64  // valid for KindInt (signed, 32-bit-widening source value)
	Float float64
	Char  byte
}

// String gives a debug representation of the token, used in parser error
// messages ("unexpected token X").
func (t Token) String() string {
	switch t.Kind {
	case KindAccessModifier, KindKeyword, KindPunct:
		return t.Sym.String()
	case KindName:
		return fmt.Sprintf("NAME(%s)", t.Name)
	case KindString:
		return fmt.Sprintf("STRING(%q)", t.Str)
	case KindInt:
		return fmt.Sprintf("INT(%d)", t.Int)
	case KindFloat:
		return fmt.Sprintf("FLOAT(%g)", t.Float)
	case KindChar:
		return fmt.Sprintf("CHAR(%q)", t.Char)
	default:
		return "UNKNOWN"
	}
}
