// Package ast defines the abstract syntax tree node vocabulary produced by
// the parser, walked by the semantic analyzer, and walked again by the IR
// generator.
package ast

import (
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/symbols"
)

// Rule is the fixed, closed vocabulary of AST node kinds.
type Rule int

const (
	RuleModule Rule = iota
	RuleDepends
	RuleName
	RuleType
	RuleAccessModifier
	RuleSpecs
	RuleSpec
	RuleProperties
	RuleProperty
	RulePropertyFunction
	RuleFunctions
	RuleFunction
	RuleNative
	RuleFunctionParameters
	RuleFunctionParameter
	RuleBlock

	RuleAssign
	RuleReturn
	RuleIf
	RuleFor
	RuleLoopInitialize
	RuleLoopCondition
	RuleLoopUpdate

	RuleExpression
	RuleMember
	RuleCall
	RuleCallParameters
	RuleNew
	RuleDefault
	RuleSymbolRef

	RuleLogOr
	RuleLogAnd
	RuleLogNot

	RuleEquals
	RuleNotEquals
	RuleLess
	RuleLessEquals
	RuleGreater
	RuleGreaterEquals

	RuleAdd
	RuleSub
	RuleMul
	RuleDiv
	RuleMod

	RuleBoolLiteral
	RuleIntLiteral
	RuleFloatLiteral
	RuleCharLiteral
	RuleStringLiteral

	// RuleAnyType is the special rule that matches with any type in the
	// semantic analyzer. It is the parser's placeholder for unary minus's
	// phantom left operand and must never be a standalone statement.
	RuleAnyType
)

var ruleNames = [...]string{
	"module", "depends", "name", "type", "access-modifier", "specs", "spec",
	"properties", "property", "property-function", "functions", "function",
	"native", "function-parameters", "function-parameter", "block",
	"assign", "return", "if", "for", "loop-initialize", "loop-condition", "loop-update",
	"expression", "member", "call", "call-parameters", "new", "default", "symbol-ref",
	"logor", "logand", "lognot",
	"equals", "not-equals", "less", "less-equals", "greater", "greater-equals",
	"add", "sub", "mul", "div", "mod",
	"bool-literal", "int-literal", "float-literal", "char-literal", "string-literal",
	"any-type",
}

func (r Rule) String() string {
	if int(r) >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "unknown-rule"
}

// Node is the single tagged-variant AST node type used for every rule in
// the grammar, mirroring the original compiler's one-class-many-rules Node
// design. It owns its children (destroying a node destroys its subtree,
// which in Go simply means dropping the last reference) and carries
// exactly one payload field meaningful for its Rule, plus the one
// semantic-annotation slot filled in by the semantic analyzer and read by
// the IR generator.
type Node struct {
	Rule Rule
	Pos  gserr.Position

	Children []*Node

	// Payload: at most one of these is meaningful, chosen by Rule.
	BoolVal   bool
	IntVal    int64
	FloatVal  float64
	SymVal    lexer.Symbol
	StringVal string

	// annotation is the node's owned semantic-symbol annotation, written by
	// the semantic analyzer and read by the IR generator. SetSymbol clones
	// its argument so each node owns an independent copy, per spec.md §9.
	annotation *symbols.Symbol
}

// New creates a childless Node with no payload.
func New(rule Rule, pos gserr.Position) *Node {
	return &Node{Rule: rule, Pos: pos}
}

// NewBool creates a bool-payload Node (bool-literal).
func NewBool(rule Rule, pos gserr.Position, v bool) *Node {
	return &Node{Rule: rule, Pos: pos, BoolVal: v}
}

// NewInt creates an int-payload Node (int-literal).
func NewInt(rule Rule, pos gserr.Position, v int64) *Node {
	return &Node{Rule: rule, Pos: pos, IntVal: v}
}

// NewFloat creates a float-payload Node (float-literal).
func NewFloat(rule Rule, pos gserr.Position, v float64) *Node {
	return &Node{Rule: rule, Pos: pos, FloatVal: v}
}

// NewSymbol creates a lexer.Symbol-payload Node (access-modifier and the
// operator node rules that retain their punctuation code, e.g. assign ops).
func NewSymbol(rule Rule, pos gserr.Position, v lexer.Symbol) *Node {
	return &Node{Rule: rule, Pos: pos, SymVal: v}
}

// NewString creates a string-payload Node (name, string-literal, char
// payloads that are represented as single-byte strings are NOT here; see
// NewChar).
func NewString(rule Rule, pos gserr.Position, v string) *Node {
	return &Node{Rule: rule, Pos: pos, StringVal: v}
}

// NewChar creates a char-literal Node; chars are stored as a one-byte
// string in StringVal for uniformity with NewString-backed nodes.
func NewChar(pos gserr.Position, v byte) *Node {
	return &Node{Rule: RuleCharLiteral, Pos: pos, StringVal: string(v)}
}

// AddChild appends child to the node's ordered child list.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Child returns the i'th child.
func (n *Node) Child(i int) *Node {
	return n.Children[i]
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// SetSymbol clones sym and stores it as this node's owned annotation.
func (n *Node) SetSymbol(sym *symbols.Symbol) {
	n.annotation = sym.Clone()
}

// Symbol returns the node's annotation, or nil if the semantic analyzer
// has not (yet) annotated this node.
func (n *Node) Symbol() *symbols.Symbol {
	return n.annotation
}

// Char returns the single byte of a char-literal node's payload.
func (n *Node) Char() byte {
	if len(n.StringVal) == 0 {
		return 0
	}
	return n.StringVal[0]
}
