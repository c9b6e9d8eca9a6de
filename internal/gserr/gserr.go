// Package gserr holds the typed error model used across the Gunderscript
// compiler front end. Every failure that can be attributed to a location in
// source carries a Code, a default message, and a (line, column) Position.
package gserr

import (
	"errors"
	"fmt"
)

// Code is a closed taxonomy of compiler failure kinds, clustered by the
// layer that raises them. Codes beginning with Lexer/Parser/Semantic/IR are
// user-facing; SymbolTable codes are internal and must be translated to a
// more specific Semantic code at the sema catch site before they can escape.
type Code int

const (
	// Lexical errors.
	LexerUnterminatedComment Code = iota
	LexerUnterminatedString
	LexerNewlineInString
	LexerBadEscape
	LexerBadChar
	LexerBadNumber
	LexerNoMatch

	// Syntactic errors.
	ParserMissingPackage
	ParserBadPackageName
	ParserMalformedDepends
	ParserExpectedSemicolon
	ParserUnexpectedToken
	ParserMalformedSpec
	ParserMalformedProperty
	ParserMalformedFunction
	ParserMalformedBlock
	ParserMalformedExpression
	ParserIncompleteNameStatement
	ParserUnexpectedEOF

	// Semantic errors.
	SemanticInvalidPackageName
	SemanticDuplicateSpec
	SemanticDuplicateFunction
	SemanticDuplicateParameter
	SemanticDuplicateProperty
	SemanticDuplicateGenericParameter
	SemanticUndefinedType
	SemanticUndefinedVariable
	SemanticVoidInExpression
	SemanticVoidInParameter
	SemanticFunctionOverloadNotFound
	SemanticPropertyNotFound
	SemanticConstructorOverloadNotFound
	SemanticTypeMismatchInAssign
	SemanticReturnTypeMismatch
	SemanticReturnInVoid
	SemanticReturnFromPropertySet
	SemanticUnmatchingTypeInOp
	SemanticInvalidTypeInAdd
	SemanticNonBoolInNot
	SemanticNonBoolOperands
	SemanticNonNumericOperands
	SemanticNonBoolIfCondition
	SemanticNonBoolLoopCondition
	SemanticThisAssigned
	SemanticNotAccessible
	SemanticUnsupportedTypecast

	// IR generation errors.
	IRInvalidCall
	IRIllegalState
	IRNotImplemented

	// Symbol table errors (internal only).
	SymbolTableDuplicateSymbol
	SymbolTableUndefinedSymbol
)

var codeNames = map[Code]string{
	LexerUnterminatedComment:           "lexer-unterminated-comment",
	LexerUnterminatedString:            "lexer-unterminated-string",
	LexerNewlineInString:               "lexer-newline-in-string",
	LexerBadEscape:                     "lexer-bad-escape",
	LexerBadChar:                       "lexer-bad-char",
	LexerBadNumber:                     "lexer-bad-number",
	LexerNoMatch:                       "lexer-no-match",
	ParserMissingPackage:               "parser-missing-package",
	ParserBadPackageName:               "parser-bad-package-name",
	ParserMalformedDepends:             "parser-malformed-depends",
	ParserExpectedSemicolon:            "parser-expected-semicolon",
	ParserUnexpectedToken:              "parser-unexpected-token",
	ParserMalformedSpec:                "parser-malformed-spec",
	ParserMalformedProperty:            "parser-malformed-property",
	ParserMalformedFunction:            "parser-malformed-function",
	ParserMalformedBlock:               "parser-malformed-block",
	ParserMalformedExpression:          "parser-malformed-expression",
	ParserIncompleteNameStatement:      "parser-incomplete-name-statement",
	ParserUnexpectedEOF:                "parser-unexpected-eof",
	SemanticInvalidPackageName:         "semantic-invalid-package-name",
	SemanticDuplicateSpec:              "semantic-duplicate-spec",
	SemanticDuplicateFunction:          "semantic-duplicate-function",
	SemanticDuplicateParameter:         "semantic-duplicate-parameter",
	SemanticDuplicateProperty:          "semantic-duplicate-property",
	SemanticDuplicateGenericParameter:  "semantic-duplicate-generic-parameter",
	SemanticUndefinedType:              "semantic-undefined-type",
	SemanticUndefinedVariable:          "semantic-undefined-variable",
	SemanticVoidInExpression:           "semantic-void-in-expression",
	SemanticVoidInParameter:            "semantic-void-in-parameter",
	SemanticFunctionOverloadNotFound:   "semantic-function-overload-not-found",
	SemanticPropertyNotFound:           "semantic-property-not-found",
	SemanticConstructorOverloadNotFound: "semantic-constructor-overload-not-found",
	SemanticTypeMismatchInAssign:       "semantic-type-mismatch-in-assign",
	SemanticReturnTypeMismatch:         "semantic-return-type-mismatch",
	SemanticReturnInVoid:               "semantic-return-in-void",
	SemanticReturnFromPropertySet:      "semantic-return-from-property-set",
	SemanticUnmatchingTypeInOp:         "semantic-unmatching-type-in-op",
	SemanticInvalidTypeInAdd:           "semantic-invalid-type-in-add",
	SemanticNonBoolInNot:               "semantic-non-bool-in-not",
	SemanticNonBoolOperands:            "semantic-non-bool-operands",
	SemanticNonNumericOperands:         "semantic-non-numeric-operands",
	SemanticNonBoolIfCondition:         "semantic-non-bool-if-condition",
	SemanticNonBoolLoopCondition:       "semantic-non-bool-loop-condition",
	SemanticThisAssigned:               "semantic-this-assigned",
	SemanticNotAccessible:              "semantic-not-accessible",
	SemanticUnsupportedTypecast:        "semantic-unsupported-typecast",
	IRInvalidCall:                      "ir-invalid-call",
	IRIllegalState:                     "illegal-state",
	IRNotImplemented:                   "not-implemented",
	SymbolTableDuplicateSymbol:         "symboltable-duplicate-symbol",
	SymbolTableUndefinedSymbol:         "symboltable-undefined-symbol",
}

// String gives the canonical lower-kebab-case name of the code, as it
// appears in `<file>:<line>:<column>: <code>: <message>` diagnostics.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Position is the (line, column) a failure is attributed to. Line and
// column are both 1-indexed, matching the position convention used by the
// Lexer and carried onto every AST Node.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is a typed, positioned compiler failure. It implements the standard
// error interface and supports errors.Is/errors.As via Unwrap, the way
// server/serr.Error and internal/tqerrors.interpreterError do in the rest of
// the pack.
type Error struct {
	Code Code
	Pos  Position
	msg  string
	wrap error
}

// Error returns "<code>: <message>", matching the diagnostic body that the
// CLI prefixes with "<file>:<line>:<column>: ".
func (e *Error) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.msg, e.wrap.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

// Unwrap gives the error that this Error wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrap
}

// Is reports whether target is a *Error with the same Code. This lets
// callers write errors.Is(err, gserr.New(gserr.LexerBadNumber, gserr.Position{}, ""))-
// style sentinel checks against a code alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// New creates an Error with the given code, position, and formatted
// message.
func New(code Code, pos Position, format string, a ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, msg: fmt.Sprintf(format, a...)}
}

// Wrap creates an Error with the given code, position, and formatted
// message, wrapping cause as its Unwrap() target.
func Wrap(code Code, pos Position, cause error, format string, a ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, msg: fmt.Sprintf(format, a...), wrap: cause}
}

// CodeOf extracts the Code of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func CodeOf(err error) (code Code, ok bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code, true
	}
	return 0, false
}
