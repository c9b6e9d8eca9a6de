// Package irgen implements the second two-pass AST walker: a prescan that
// assigns every function (module-level, spec member, constructor, property
// accessor) a slot in a module function-pointer table and computes spec
// property offsets, followed by a body pass that emits a typed, register-
// style linear IR against an opaque Builder interface, re-deriving callee
// symbols from AST structure rather than a second annotation slot.
package irgen

import "github.com/gundermanc/gsc/internal/symbols"

// Reg is an opaque handle to an IR value, meaningful only to the Builder
// implementation that produced it. The generator never inspects a Reg's
// contents; it only threads them between Builder calls.
type Reg struct {
	id   int
	kind string
}

// Label is an opaque handle to a branch target, meaningful only to the
// Builder implementation that produced it.
type Label struct {
	id int
}

// ArithOp is an integer or float arithmetic operator. Mod is only valid
// for ArithInt; float mod is routed through the host mod helper instead
// (see Builder.FloatMod).
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// CompareOp is a comparison operator, valid in int, float, and (eq/ne only)
// pointer-equality variants.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// RegClass is the physical register family a value's TypeFormat maps onto:
// int-family (int32, int8/char, bool all ride 32-bit int registers),
// float, or pointer. It drives the choice between the Builder's *Int,
// *Float, and *Pointer method families.
type RegClass int

const (
	ClassInt RegClass = iota
	ClassFloat
	ClassPointer
)

// ClassOf maps a type's physical format onto its register class.
func ClassOf(format symbols.TypeFormat) RegClass {
	switch format {
	case symbols.FormatFloat:
		return ClassFloat
	case symbols.FormatPointer:
		return ClassPointer
	default:
		return ClassInt
	}
}

// CallInfo selects one of the indirect-call info records the back-end
// registers: one per return-type format and per member-ness, per spec.
type CallInfo struct {
	ReturnClass RegClass
	HasSelf     bool
}

// AllocaHandle lets the generator backpatch a stack slot's size after the
// fact, for the argument buffer whose total size isn't known until every
// argument has been serialized.
type AllocaHandle interface {
	Resize(sizeBytes int)
}

// Builder is the opaque IR instruction sink the generator emits against.
// It abstracts over whatever JIT back-end ultimately consumes the linear
// IR (this repo ships only the TextBuilder reference/test implementation;
// a real back-end is an explicit collaborator, not part of this package).
type Builder interface {
	// FunctionStart begins a new function fragment at the given function-
	// pointer-table index. It returns the register holding the argument-
	// buffer pointer and, if hasSelf, the register holding the `this`
	// pointer (the second physical parameter).
	FunctionStart(tableIndex int, hasSelf bool) (argBuf Reg, self Reg)
	FunctionEnd()

	// Typed returns. ReturnInt also carries bool and narrow (int8/char)
	// values, which flow through 32-bit registers until the caller narrows
	// them at a store site.
	ReturnInt(v Reg)
	ReturnFloat(v Reg)
	ReturnPointer(v Reg)

	// Immediates.
	ImmInt(v int32) Reg
	ImmFloat(v float32) Reg
	ImmPointerNull() Reg

	// Arithmetic.
	ArithInt(op ArithOp, lhs, rhs Reg) Reg
	ArithFloat(op ArithOp, lhs, rhs Reg) Reg

	// Comparisons and inversion.
	CompareInt(op CompareOp, lhs, rhs Reg) Reg
	CompareFloat(op CompareOp, lhs, rhs Reg) Reg
	ComparePointer(op CompareOp, lhs, rhs Reg) Reg
	Xor(v Reg) Reg

	// Numeric conversions for the function-call-like typecast syntax
	// (spec.md §4.4). Int<->int and bool<->int casts never reach the
	// Builder: every int-family value already rides the same 32-bit
	// register, so those casts lower to a no-op (int-to-bool instead goes
	// through CompareInt against zero).
	ConvertIntToFloat(v Reg) Reg
	ConvertFloatToInt(v Reg) Reg

	// Typed memory access, specialized by element size/format: 1-byte int
	// with sign-extend-on-load/narrow-on-store, 4-byte int, 4-byte float,
	// pointer.
	LoadInt8(base Reg, offset int) Reg
	LoadInt32(base Reg, offset int) Reg
	LoadFloat32(base Reg, offset int) Reg
	LoadPointer(base Reg, offset int) Reg
	StoreInt8(base Reg, offset int, v Reg)
	StoreInt32(base Reg, offset int, v Reg)
	StoreFloat32(base Reg, offset int, v Reg)
	StorePointer(base Reg, offset int, v Reg)

	// Alloca reserves a stack-local block of sizeBytes, returning a pointer
	// register and a handle to backpatch its size later.
	Alloca(sizeBytes int) (Reg, AllocaHandle)

	// Control flow.
	Label() Label
	Bind(l Label)
	Jump(l Label)
	JumpIfTrue(cond Reg, l Label)
	RegFence()

	// LoadFunctionPointer loads the pointer currently held in the module
	// function-pointer table's slot tableIndex (filled by the back-end
	// after assembly).
	LoadFunctionPointer(tableIndex int) Reg

	// CallIndirect calls fn (a pointer loaded via LoadFunctionPointer)
	// with argBuf as the argument-buffer parameter and, if ci.HasSelf,
	// self as the second physical parameter.
	CallIndirect(ci CallInfo, fn Reg, argBuf Reg, self Reg) Reg

	// AllocGC and FloatMod are the two native call-info records the
	// generator emits outside the ordinary function-pointer table: the GC
	// allocator and the host float-mod helper.
	AllocGC(sizeBytes Reg) Reg
	FloatMod(lhs, rhs Reg) Reg
}
