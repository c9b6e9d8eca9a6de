package lexer

// Symbol enumerates every punctuation operator, access modifier, and
// keyword recognized by the language. Names/strings/integers/floats/chars
// do not carry a Symbol; see Token.
type Symbol int

const (
	// Punctuation/operators.
	SymSwap Symbol = iota
	SymAssign
	SymLessEquals
	SymLess
	SymGreaterEquals
	SymGreater
	SymAdd
	SymAddEquals
	SymSub
	SymSubEquals
	SymMul
	SymMulEquals
	SymDiv
	SymDivEquals
	SymMod
	SymModEquals
	SymLParen
	SymRParen
	SymLBrace
	SymRBrace
	SymDot
	SymSemicolon
	SymComma
	SymLogOr
	SymLogAnd
	SymLogNot
	SymEquals
	SymNotEquals

	// Access modifiers.
	SymPublic
	SymConcealed
	SymInternal

	// Keywords.
	SymPackage
	SymDepends
	SymSpec
	SymIf
	SymElse
	SymWhile
	SymFor
	SymReturn
	SymGet
	SymSet
	SymConstruct
	SymNew
	SymDefault
	SymNative
	SymTrue
	SymFalse

	// AnyType is the internal sentinel placeholder symbol that unary minus
	// desugars its phantom left operand to. It never arises from lexing.
	SymAnyType
)

var symbolNames = map[Symbol]string{
	SymSwap: "SWAP", SymAssign: "ASSIGN", SymLessEquals: "LESSEQUALS",
	SymLess: "LESS", SymGreaterEquals: "GREATEREQUALS", SymGreater: "GREATER",
	SymAdd: "ADD", SymAddEquals: "ADDEQUALS", SymSub: "SUB", SymSubEquals: "SUBEQUALS",
	SymMul: "MUL", SymMulEquals: "MULEQUALS", SymDiv: "DIV", SymDivEquals: "DIVEQUALS",
	SymMod: "MOD", SymModEquals: "MODEQUALS",
	SymLParen: "LPAREN", SymRParen: "RPAREN", SymLBrace: "LBRACE", SymRBrace: "RBRACE",
	SymDot: "DOT", SymSemicolon: "SEMICOLON", SymComma: "COMMA",
	SymLogOr: "LOGOR", SymLogAnd: "LOGAND", SymLogNot: "LOGNOT",
	SymEquals: "EQUALS", SymNotEquals: "NOTEQUALS",
	SymPublic: "PUBLIC", SymConcealed: "CONCEALED", SymInternal: "INTERNAL",
	SymPackage: "PACKAGE", SymDepends: "DEPENDS", SymSpec: "SPEC",
	SymIf: "IF", SymElse: "ELSE", SymWhile: "WHILE", SymFor: "FOR",
	SymReturn: "RETURN", SymGet: "GET", SymSet: "SET", SymConstruct: "CONSTRUCT",
	SymNew: "NEW", SymDefault: "DEFAULT", SymNative: "NATIVE",
	SymTrue: "TRUE", SymFalse: "FALSE", SymAnyType: "ANY_TYPE",
}

// String gives the canonical upper-case name of the symbol, for use in
// diagnostics and the parser's "unexpected token" messages.
func (s Symbol) String() string {
	if n, ok := symbolNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// keyword is looked up after a name has been fully scanned; it pairs the
// token Kind the keyword should be emitted as with its Symbol.
type keyword struct {
	kind Kind
	sym  Symbol
}

// keywords is the static table of reserved words consulted before a name
// token is emitted. Primitive type names (int32, int8, float32, bool,
// string) are deliberately NOT here: per the grammar's `type_expr := NAME
// ...`, they lex as ordinary names and are resolved as built-in types by
// the semantic analyzer's bottom symbol-table frame.
var keywords = map[string]keyword{
	"public":    {KindAccessModifier, SymPublic},
	"concealed": {KindAccessModifier, SymConcealed},
	"internal":  {KindAccessModifier, SymInternal},

	"package":   {KindKeyword, SymPackage},
	"depends":   {KindKeyword, SymDepends},
	"spec":      {KindKeyword, SymSpec},
	"if":        {KindKeyword, SymIf},
	"else":      {KindKeyword, SymElse},
	"while":     {KindKeyword, SymWhile},
	"for":       {KindKeyword, SymFor},
	"return":    {KindKeyword, SymReturn},
	"get":       {KindKeyword, SymGet},
	"set":       {KindKeyword, SymSet},
	"construct": {KindKeyword, SymConstruct},
	"new":       {KindKeyword, SymNew},
	"default":   {KindKeyword, SymDefault},
	"native":    {KindKeyword, SymNative},
	"true":      {KindKeyword, SymTrue},
	"false":     {KindKeyword, SymFalse},
}
