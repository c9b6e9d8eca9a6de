// Package symbols implements the symbol table and symbol kinds shared by
// the semantic analyzer and the IR generator: primitive/compound types,
// generic type templates and their applications, and function/property/
// parameter/local-variable records, all keyed by mangled name.
package symbols

import "fmt"

// Kind tags which of a Symbol's three shapes is populated: a plain type, a
// generic type template or application, or a function-like record
// (function, property getter/setter, parameter, or local variable).
type Kind int

const (
	KindType Kind = iota
	KindGenericType
	KindFunction
)

// TypeFormat is the physical representation a type's values take, driving
// the IR generator's choice of load/store/arithmetic op.
type TypeFormat int

const (
	FormatVoid TypeFormat = iota
	FormatInt
	FormatFloat
	FormatBool
	FormatPointer

	// FormatAny marks the any-type sentinel: it type-matches every other
	// type and must never escape into a user-visible annotation.
	FormatAny
)

func (f TypeFormat) String() string {
	switch f {
	case FormatVoid:
		return "void"
	case FormatInt:
		return "int"
	case FormatFloat:
		return "float"
	case FormatBool:
		return "bool"
	case FormatPointer:
		return "pointer"
	case FormatAny:
		return "any"
	default:
		return "?"
	}
}

// AccessModifier is one of the three access levels a type/function/property
// may be declared with.
type AccessModifier int

const (
	AccessPublic AccessModifier = iota
	AccessConcealed
	AccessInternal
)

func (a AccessModifier) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessConcealed:
		return "concealed"
	case AccessInternal:
		return "internal"
	default:
		return "?"
	}
}

// FuncRole distinguishes the five function-like record shapes that all
// reuse the same Kind==KindFunction fields, per spec.md §3's note that
// property getter/setter and parameter/local-variable "reuse the function
// record because they also carry a declared type".
type FuncRole int

const (
	RoleFunction FuncRole = iota
	RolePropertyGetter
	RolePropertySetter
	RoleParameter
	RoleLocalVariable
)

// Symbol is the tagged-variant symbol-table entry, mirroring the original
// compiler's single Symbol class (symbol_type + access_modifier + type +
// spec_name + name) rather than a family of Go interfaces: a flat struct
// keeps the mangled-name-keyed map in Table trivial and keeps annotation
// cloning (see Clone) cheap, matching the "unique-owner, clone-on-write"
// model spec.md §9 calls for on AST nodes.
type Symbol struct {
	Kind Kind

	// Name is the type's name (KindType/KindGenericType) or the symbol's
	// mangled name (KindFunction): see Mangle*.
	Name      string
	Format    TypeFormat
	SizeBytes int
	Access    AccessModifier
	Native    bool

	// GenericParams holds the formal parameter symbols of an unapplied
	// template, or the concrete argument symbols of an applied generic.
	// Applied is false for a template, true for an application.
	GenericParams []*Symbol
	Applied       bool

	// Function-only fields (Kind == KindFunction).
	SpecName   string // enclosing spec name, "" for module-level
	ParamTypes []*Symbol
	ReturnType *Symbol
	Role       FuncRole
}

// TypeSymbol returns the Symbol describing s's resulting value type: s
// itself for a type/generic-type symbol, or ReturnType for a function-like
// symbol (which also covers parameters and local variables, whose
// "return type" field is reused to hold their declared type).
func (s *Symbol) TypeSymbol() *Symbol {
	if s == nil {
		return nil
	}
	if s.Kind == KindFunction {
		return s.ReturnType
	}
	return s
}

// Equals implements the strict type-equivalence rule of spec.md §4.4: two
// types match iff they have the same (mangled) name, with the AnyType
// sentinel comparing equal to everything.
func (s *Symbol) Equals(other *Symbol) bool {
	if s == nil || other == nil {
		return false
	}
	if s.Format == FormatAny || other.Format == FormatAny {
		return true
	}
	return s.Name == other.Name
}

// Clone returns a shallow copy of s, suitable for the one owned annotation
// slot each AST node holds (spec.md §3, §9): symbols are otherwise
// immutable once constructed, so sharing their slice fields across clones
// is safe.
func (s *Symbol) Clone() *Symbol {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil symbol>"
	}
	switch s.Kind {
	case KindFunction:
		return fmt.Sprintf("func %s", s.Name)
	default:
		return fmt.Sprintf("type %s", s.Name)
	}
}

// IsVoid reports whether the symbol's resulting type is void.
func (s *Symbol) IsVoid() bool {
	ts := s.TypeSymbol()
	return ts != nil && ts.Format == FormatVoid
}

// AnyType is the internal placeholder type that type-matches every other
// type. It is produced only by the parser's unary-minus desugaring (see
// internal/parser) and must never be annotated onto a user-visible
// expression node that escapes the unary-minus lowering.
var AnyType = &Symbol{Kind: KindType, Name: "any-type", Format: FormatAny}

// Built-in primitive type symbols. These occupy the symbol table's bottom
// frame (see Table.PutBottom) before any user code is processed.
var (
	Int32   = &Symbol{Kind: KindType, Name: "int32", Format: FormatInt, SizeBytes: 4, Access: AccessPublic}
	Int8    = &Symbol{Kind: KindType, Name: "int8", Format: FormatInt, SizeBytes: 1, Access: AccessPublic}
	Float32 = &Symbol{Kind: KindType, Name: "float32", Format: FormatFloat, SizeBytes: 4, Access: AccessPublic}
	Bool    = &Symbol{Kind: KindType, Name: "bool", Format: FormatBool, SizeBytes: 1, Access: AccessPublic}
	String  = &Symbol{Kind: KindType, Name: "string", Format: FormatPointer, SizeBytes: 8, Access: AccessPublic}
	Void    = &Symbol{Kind: KindType, Name: "void", Format: FormatVoid, SizeBytes: 0, Access: AccessPublic}
)

// Builtins lists the primitive type symbols installed into the bottom
// symbol-table frame at the start of every compile.
var Builtins = []*Symbol{Int32, Int8, Float32, Bool, String, Void}
