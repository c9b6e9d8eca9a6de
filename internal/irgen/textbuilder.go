package irgen

import "fmt"

// TextBuilder is a reference Builder implementation that renders every
// emitted instruction as a line of pseudo-assembly instead of driving a
// real JIT back-end. It exists so this package's own tests can assert on
// emission order and operand shapes without depending on a concrete JIT,
// the same role a disassembly/golden-text dump plays in the pack's own
// parser/lexer test suites.
type TextBuilder struct {
	Lines   []string
	nextReg int
	nextLbl int
}

func NewTextBuilder() *TextBuilder {
	return &TextBuilder{}
}

func (b *TextBuilder) reg(kind string) Reg {
	r := Reg{id: b.nextReg, kind: kind}
	b.nextReg++
	return r
}

func (b *TextBuilder) emit(format string, args ...interface{}) {
	b.Lines = append(b.Lines, fmt.Sprintf(format, args...))
}

func (b *TextBuilder) FunctionStart(tableIndex int, hasSelf bool) (Reg, Reg) {
	b.emit("function_start #%d self=%v", tableIndex, hasSelf)
	argBuf := b.reg("argbuf")
	var self Reg
	if hasSelf {
		self = b.reg("self")
	}
	return argBuf, self
}

func (b *TextBuilder) FunctionEnd() {
	b.emit("function_end")
}

func (b *TextBuilder) ReturnInt(v Reg)     { b.emit("ret_i %s", regName(v)) }
func (b *TextBuilder) ReturnFloat(v Reg)   { b.emit("ret_f %s", regName(v)) }
func (b *TextBuilder) ReturnPointer(v Reg) { b.emit("ret_p %s", regName(v)) }

func (b *TextBuilder) ImmInt(v int32) Reg {
	r := b.reg("i")
	b.emit("%s = imm_i %d", regName(r), v)
	return r
}

func (b *TextBuilder) ImmFloat(v float32) Reg {
	r := b.reg("f")
	b.emit("%s = imm_f %f", regName(r), v)
	return r
}

func (b *TextBuilder) ImmPointerNull() Reg {
	r := b.reg("p")
	b.emit("%s = imm_p null", regName(r))
	return r
}

func (b *TextBuilder) ArithInt(op ArithOp, lhs, rhs Reg) Reg {
	r := b.reg("i")
	b.emit("%s = %s_i %s, %s", regName(r), arithName(op), regName(lhs), regName(rhs))
	return r
}

func (b *TextBuilder) ArithFloat(op ArithOp, lhs, rhs Reg) Reg {
	r := b.reg("f")
	b.emit("%s = %s_f %s, %s", regName(r), arithName(op), regName(lhs), regName(rhs))
	return r
}

func (b *TextBuilder) CompareInt(op CompareOp, lhs, rhs Reg) Reg {
	r := b.reg("i")
	b.emit("%s = cmp_i.%s %s, %s", regName(r), cmpName(op), regName(lhs), regName(rhs))
	return r
}

func (b *TextBuilder) CompareFloat(op CompareOp, lhs, rhs Reg) Reg {
	r := b.reg("i")
	b.emit("%s = cmp_f.%s %s, %s", regName(r), cmpName(op), regName(lhs), regName(rhs))
	return r
}

func (b *TextBuilder) ComparePointer(op CompareOp, lhs, rhs Reg) Reg {
	r := b.reg("i")
	b.emit("%s = cmp_p.%s %s, %s", regName(r), cmpName(op), regName(lhs), regName(rhs))
	return r
}

func (b *TextBuilder) Xor(v Reg) Reg {
	r := b.reg("i")
	b.emit("%s = xor %s, 1", regName(r), regName(v))
	return r
}

func (b *TextBuilder) ConvertIntToFloat(v Reg) Reg {
	r := b.reg("f")
	b.emit("%s = cvt_i2f %s", regName(r), regName(v))
	return r
}

func (b *TextBuilder) ConvertFloatToInt(v Reg) Reg {
	r := b.reg("i")
	b.emit("%s = cvt_f2i %s", regName(r), regName(v))
	return r
}

func (b *TextBuilder) LoadInt8(base Reg, offset int) Reg {
	r := b.reg("i")
	b.emit("%s = load_i8 [%s+%d]", regName(r), regName(base), offset)
	return r
}

func (b *TextBuilder) LoadInt32(base Reg, offset int) Reg {
	r := b.reg("i")
	b.emit("%s = load_i32 [%s+%d]", regName(r), regName(base), offset)
	return r
}

func (b *TextBuilder) LoadFloat32(base Reg, offset int) Reg {
	r := b.reg("f")
	b.emit("%s = load_f32 [%s+%d]", regName(r), regName(base), offset)
	return r
}

func (b *TextBuilder) LoadPointer(base Reg, offset int) Reg {
	r := b.reg("p")
	b.emit("%s = load_p [%s+%d]", regName(r), regName(base), offset)
	return r
}

func (b *TextBuilder) StoreInt8(base Reg, offset int, v Reg) {
	b.emit("store_i8 [%s+%d], %s", regName(base), offset, regName(v))
}

func (b *TextBuilder) StoreInt32(base Reg, offset int, v Reg) {
	b.emit("store_i32 [%s+%d], %s", regName(base), offset, regName(v))
}

func (b *TextBuilder) StoreFloat32(base Reg, offset int, v Reg) {
	b.emit("store_f32 [%s+%d], %s", regName(base), offset, regName(v))
}

func (b *TextBuilder) StorePointer(base Reg, offset int, v Reg) {
	b.emit("store_p [%s+%d], %s", regName(base), offset, regName(v))
}

type textAlloca struct {
	b   *TextBuilder
	reg Reg
}

func (a *textAlloca) Resize(sizeBytes int) {
	a.b.emit("alloca.resize %s, %d", regName(a.reg), sizeBytes)
}

func (b *TextBuilder) Alloca(sizeBytes int) (Reg, AllocaHandle) {
	r := b.reg("p")
	b.emit("%s = alloca %d", regName(r), sizeBytes)
	return r, &textAlloca{b: b, reg: r}
}

func (b *TextBuilder) Label() Label {
	l := Label{id: b.nextLbl}
	b.nextLbl++
	return l
}

func (b *TextBuilder) Bind(l Label) {
	b.emit("L%d:", l.id)
}

func (b *TextBuilder) Jump(l Label) {
	b.emit("jump L%d", l.id)
}

func (b *TextBuilder) JumpIfTrue(cond Reg, l Label) {
	b.emit("jump_if_true %s, L%d", regName(cond), l.id)
}

func (b *TextBuilder) RegFence() {
	b.emit("regfence")
}

func (b *TextBuilder) LoadFunctionPointer(tableIndex int) Reg {
	r := b.reg("p")
	b.emit("%s = load_fp #%d", regName(r), tableIndex)
	return r
}

func (b *TextBuilder) CallIndirect(ci CallInfo, fn Reg, argBuf Reg, self Reg) Reg {
	r := b.reg(classKind(ci.ReturnClass))
	if ci.HasSelf {
		b.emit("%s = call_ind.%s %s(%s, self=%s)", regName(r), classSuffix(ci.ReturnClass), regName(fn), regName(argBuf), regName(self))
	} else {
		b.emit("%s = call_ind.%s %s(%s)", regName(r), classSuffix(ci.ReturnClass), regName(fn), regName(argBuf))
	}
	return r
}

func (b *TextBuilder) AllocGC(sizeBytes Reg) Reg {
	r := b.reg("p")
	b.emit("%s = call_native.gc_alloc %s", regName(r), regName(sizeBytes))
	return r
}

func (b *TextBuilder) FloatMod(lhs, rhs Reg) Reg {
	r := b.reg("f")
	b.emit("%s = call_native.float_mod %s, %s", regName(r), regName(lhs), regName(rhs))
	return r
}

func regName(r Reg) string {
	if r.kind == "" {
		return "%void"
	}
	return fmt.Sprintf("%%%s%d", r.kind, r.id)
}

func arithName(op ArithOp) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	default:
		return "?"
	}
}

func cmpName(op CompareOp) string {
	switch op {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	default:
		return "?"
	}
}

func classKind(c RegClass) string {
	switch c {
	case ClassFloat:
		return "f"
	case ClassPointer:
		return "p"
	default:
		return "i"
	}
}

func classSuffix(c RegClass) string {
	switch c {
	case ClassFloat:
		return "f"
	case ClassPointer:
		return "p"
	default:
		return "i"
	}
}
