package irgen

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/symbols"
)

// emitExpr lowers one expression node, reading the value-type annotation
// sema already attached (never re-inferring types) and emitting Builder
// calls. For Call/Member-call/New nodes, whose annotation holds only the
// expression's resulting VALUE type per sema's single-annotation-slot
// design, this method re-derives the callee/property symbol itself by
// re-mangling the AST's own name/argument structure against g.table,
// exactly as internal/sema's inferExpr doc comment anticipates.
func (g *Generator) emitExpr(n *ast.Node) (Reg, error) {
	switch n.Rule {
	case ast.RuleIntLiteral:
		return g.b.ImmInt(int32(n.IntVal)), nil
	case ast.RuleFloatLiteral:
		return g.b.ImmFloat(float32(n.FloatVal)), nil
	case ast.RuleCharLiteral:
		return g.b.ImmInt(int32(n.Char())), nil
	case ast.RuleBoolLiteral:
		if n.BoolVal {
			return g.b.ImmInt(1), nil
		}
		return g.b.ImmInt(0), nil
	case ast.RuleStringLiteral:
		return Reg{}, gserr.New(gserr.IRIllegalState, n.Pos, "string literal reached IR generation")
	case ast.RuleSymbolRef:
		return g.emitSymbolRef(n)
	case ast.RuleExpression:
		return g.emitExpr(n.Child(0))
	case ast.RuleAssign:
		return g.emitAssign(n)
	case ast.RuleLogOr:
		return g.emitLogOr(n)
	case ast.RuleLogAnd:
		return g.emitLogAnd(n)
	case ast.RuleLogNot:
		v, err := g.emitExpr(n.Child(0))
		if err != nil {
			return Reg{}, err
		}
		return g.b.Xor(v), nil
	case ast.RuleEquals:
		return g.emitCompare(n, OpEq)
	case ast.RuleNotEquals:
		return g.emitCompare(n, OpNe)
	case ast.RuleLess:
		return g.emitCompare(n, OpLt)
	case ast.RuleLessEquals:
		return g.emitCompare(n, OpLe)
	case ast.RuleGreater:
		return g.emitCompare(n, OpGt)
	case ast.RuleGreaterEquals:
		return g.emitCompare(n, OpGe)
	case ast.RuleAdd:
		return g.emitArith(n, OpAdd)
	case ast.RuleSub:
		return g.emitArith(n, OpSub)
	case ast.RuleMul:
		return g.emitArith(n, OpMul)
	case ast.RuleDiv:
		return g.emitArith(n, OpDiv)
	case ast.RuleMod:
		return g.emitArith(n, OpMod)
	case ast.RuleMember:
		return g.emitMember(n)
	case ast.RuleCall:
		return g.emitCall(n, "", Reg{})
	case ast.RuleNew:
		return g.emitNew(n)
	case ast.RuleDefault:
		return g.emitDefault(n)
	default:
		return Reg{}, gserr.New(gserr.IRNotImplemented, n.Pos, "no IR lowering for %s", n.Rule)
	}
}

func (g *Generator) emitSymbolRef(n *ast.Node) (Reg, error) {
	entry, ok := g.regs.Get(n.StringVal)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "undeclared register for %q", n.StringVal)
	}
	if entry.Direct {
		return entry.Base, nil
	}
	return g.loadTyped(entry.Type, entry.Base, entry.Offset), nil
}

// emitAssign lowers the three-branch scoping rule sema already enforced:
// reuse the current frame's entry, else an outer frame's, else allocate a
// fresh stack slot in the current frame.
func (g *Generator) emitAssign(n *ast.Node) (Reg, error) {
	lhs, rhsNode := n.Child(0), n.Child(1)

	rhs, err := g.emitExpr(rhsNode)
	if err != nil {
		return Reg{}, err
	}

	if lhs.Rule == ast.RuleMember {
		return g.emitMemberAssign(lhs, rhs)
	}

	name := lhs.StringVal
	if entry, ok := g.regs.GetTopOnly(name); ok {
		g.storeTyped(entry.Type, entry.Base, entry.Offset, rhs)
		return rhs, nil
	}
	for depth := 1; depth < g.regs.Depth(); depth++ {
		if entry, ok := g.regs.GetFrame(depth, name); ok {
			g.storeTyped(entry.Type, entry.Base, entry.Offset, rhs)
			return rhs, nil
		}
	}

	rhsType := rhsNode.Symbol()
	slot, _ := g.b.Alloca(rhsType.SizeBytes)
	entry := RegEntry{Type: rhsType, Base: slot, Offset: 0}
	g.regs.Put(name, entry)
	g.storeTyped(entry.Type, entry.Base, entry.Offset, rhs)
	return rhs, nil
}

func (g *Generator) emitMemberAssign(member *ast.Node, rhs Reg) (Reg, error) {
	left, right := member.Child(0), member.Child(1)
	leftReg, err := g.emitExpr(left)
	if err != nil {
		return Reg{}, err
	}
	specName := left.Symbol().Name
	offset, propType, ok := g.sizes.Prop(specName, right.StringVal)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, member.Pos, "no property offset for %s.%s", specName, right.StringVal)
	}
	g.storeTyped(propType, leftReg, offset, rhs)
	return rhs, nil
}

func (g *Generator) emitLogAnd(n *ast.Node) (Reg, error) {
	return g.emitShortCircuit(n, true)
}

func (g *Generator) emitLogOr(n *ast.Node) (Reg, error) {
	return g.emitShortCircuit(n, false)
}

// emitShortCircuit lowers && (shortOnFalse=true) and || (shortOnFalse=
// false) by evaluating the left operand, branching past the right operand
// when the left already decides the result, then materializing the
// boolean result through a backing stack slot both branches store into.
func (g *Generator) emitShortCircuit(n *ast.Node, shortOnFalse bool) (Reg, error) {
	slot, _ := g.b.Alloca(1)
	lShort := g.b.Label()
	lEnd := g.b.Label()

	l, err := g.emitExpr(n.Child(0))
	if err != nil {
		return Reg{}, err
	}
	if shortOnFalse {
		g.jumpIfFalse(l, lShort)
	} else {
		g.b.JumpIfTrue(l, lShort)
	}

	r, err := g.emitExpr(n.Child(1))
	if err != nil {
		return Reg{}, err
	}
	g.b.StoreInt8(slot, 0, r)
	g.b.Jump(lEnd)

	g.b.Bind(lShort)
	if shortOnFalse {
		g.b.StoreInt8(slot, 0, g.b.ImmInt(0))
	} else {
		g.b.StoreInt8(slot, 0, g.b.ImmInt(1))
	}

	g.b.Bind(lEnd)
	return g.b.LoadInt8(slot, 0), nil
}

func (g *Generator) emitCompare(n *ast.Node, op CompareOp) (Reg, error) {
	l, err := g.emitExpr(n.Child(0))
	if err != nil {
		return Reg{}, err
	}
	r, err := g.emitExpr(n.Child(1))
	if err != nil {
		return Reg{}, err
	}
	switch ClassOf(n.Child(0).Symbol().Format) {
	case ClassFloat:
		return g.b.CompareFloat(op, l, r), nil
	case ClassPointer:
		return g.b.ComparePointer(op, l, r), nil
	default:
		return g.b.CompareInt(op, l, r), nil
	}
}

// emitArith special-cases the any-type phantom left operand the parser
// emits for unary minus (spec.md §9): it lowers to the literal zero of
// the right operand's own type, minus the right operand.
func (g *Generator) emitArith(n *ast.Node, op ArithOp) (Reg, error) {
	left, right := n.Child(0), n.Child(1)

	if left.Rule == ast.RuleAnyType {
		r, err := g.emitExpr(right)
		if err != nil {
			return Reg{}, err
		}
		if ClassOf(right.Symbol().Format) == ClassFloat {
			return g.b.ArithFloat(OpSub, g.b.ImmFloat(0), r), nil
		}
		return g.b.ArithInt(OpSub, g.b.ImmInt(0), r), nil
	}

	l, err := g.emitExpr(left)
	if err != nil {
		return Reg{}, err
	}
	r, err := g.emitExpr(right)
	if err != nil {
		return Reg{}, err
	}

	if ClassOf(left.Symbol().Format) == ClassFloat {
		if op == OpMod {
			result := g.b.FloatMod(l, r)
			g.b.RegFence()
			return result, nil
		}
		return g.b.ArithFloat(op, l, r), nil
	}
	return g.b.ArithInt(op, l, r), nil
}

func (g *Generator) emitMember(n *ast.Node) (Reg, error) {
	left, right := n.Child(0), n.Child(1)
	leftReg, err := g.emitExpr(left)
	if err != nil {
		return Reg{}, err
	}
	specName := left.Symbol().Name

	if right.Rule == ast.RuleCall {
		return g.emitCall(right, specName, leftReg)
	}

	offset, propType, ok := g.sizes.Prop(specName, right.StringVal)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "no property offset for %s.%s", specName, right.StringVal)
	}
	return g.loadTyped(propType, leftReg, offset), nil
}

// emitCall re-mangles the callee's name from the call node's own name
// child plus its evaluated arguments' resulting types, looks it up in the
// symbol table sema populated, loads its function-pointer-table slot, and
// serializes arguments into a freshly allocated argument buffer per the
// calling convention (arg-buffer pointer, plus `this` for member calls).
func (g *Generator) emitCall(n *ast.Node, specName string, self Reg) (Reg, error) {
	name := n.Child(0).StringVal
	argsNode := n.Child(1)

	if specName == "" {
		if target, ok := g.table.Get(name); ok && target.Kind == symbols.KindType {
			return g.emitCast(target, argsNode.Child(0))
		}
	}

	args := make([]Reg, argsNode.ChildCount())
	argTypeNames := make([]string, argsNode.ChildCount())
	for i, a := range argsNode.Children {
		r, err := g.emitExpr(a)
		if err != nil {
			return Reg{}, err
		}
		args[i] = r
		argTypeNames[i] = a.Symbol().Name
	}

	mangled := symbols.MangleFunction(specName, name, argTypeNames)
	sym, ok := g.table.Get(mangled)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "no registered signature for call to %q", mangled)
	}
	idx, ok := g.funcs.Index(mangled)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "no function-pointer-table slot for %q", mangled)
	}

	return g.emitIndirectCall(idx, sym, args, specName != "", self), nil
}

// emitCast lowers a function-call-like typecast (sema already validated
// against the allowed-cast matrix) to the appropriate conversion: a real
// ConvertIntToFloat/ConvertFloatToInt op for float<->numeric, a zero-
// comparison for numeric-to-bool, and a no-op for every other pairing
// (int8/int32/bool all ride the same int-family register until narrowed at
// a store site).
func (g *Generator) emitCast(target *symbols.Symbol, arg *ast.Node) (Reg, error) {
	v, err := g.emitExpr(arg)
	if err != nil {
		return Reg{}, err
	}
	srcFormat := arg.Symbol().Format

	switch target.Format {
	case symbols.FormatFloat:
		if srcFormat == symbols.FormatFloat {
			return v, nil
		}
		return g.b.ConvertIntToFloat(v), nil
	case symbols.FormatBool:
		if srcFormat == symbols.FormatBool {
			return v, nil
		}
		return g.b.CompareInt(OpNe, v, g.b.ImmInt(0)), nil
	default:
		if srcFormat == symbols.FormatFloat {
			return g.b.ConvertFloatToInt(v), nil
		}
		return v, nil
	}
}

// emitIndirectCall serializes args into a stack-allocated argument buffer
// according to each parameter's declared size, then calls through the
// function-pointer table per the calling convention, fencing registers
// afterward since the callee's ABI may clobber caller-saved state.
func (g *Generator) emitIndirectCall(tableIndex int, sym *symbols.Symbol, args []Reg, hasSelf bool, self Reg) Reg {
	fn := g.b.LoadFunctionPointer(tableIndex)

	size := 0
	for _, pt := range sym.ParamTypes {
		size += pt.SizeBytes
	}
	argBuf, _ := g.b.Alloca(size)
	offset := 0
	for i, pt := range sym.ParamTypes {
		g.storeTyped(pt, argBuf, offset, args[i])
		offset += pt.SizeBytes
	}

	ci := CallInfo{ReturnClass: ClassOf(sym.ReturnType.Format), HasSelf: hasSelf}
	result := g.b.CallIndirect(ci, fn, argBuf, self)
	g.b.RegFence()
	return result
}

// emitNew lowers `new T(args)`: allocate T's instance size through the GC
// helper, construct in place with the new pointer as `this`, fence, and
// yield the pointer — not the constructor's void return, preserving the
// single-annotation-slot invariant that a New node's own annotation holds
// the instantiated type.
func (g *Generator) emitNew(n *ast.Node) (Reg, error) {
	instType := n.Symbol()
	specName := instType.Name
	argsNode := n.Child(1)

	args := make([]Reg, argsNode.ChildCount())
	argTypeNames := make([]string, argsNode.ChildCount())
	for i, a := range argsNode.Children {
		r, err := g.emitExpr(a)
		if err != nil {
			return Reg{}, err
		}
		args[i] = r
		argTypeNames[i] = a.Symbol().Name
	}

	ptr := g.b.AllocGC(g.b.ImmInt(int32(g.sizes.Size(specName))))
	g.b.RegFence()

	mangled := symbols.MangleFunction(specName, symbols.ConstructorName(), argTypeNames)
	sym, ok := g.table.Get(mangled)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "no registered constructor %q", mangled)
	}
	idx, ok := g.funcs.Index(mangled)
	if !ok {
		return Reg{}, gserr.New(gserr.IRInvalidCall, n.Pos, "no function-pointer-table slot for constructor %q", mangled)
	}

	g.emitIndirectCall(idx, sym, args, true, ptr)
	return ptr, nil
}

func (g *Generator) emitDefault(n *ast.Node) (Reg, error) {
	t := n.Symbol()
	switch ClassOf(t.Format) {
	case ClassFloat:
		return g.b.ImmFloat(0), nil
	case ClassPointer:
		return g.b.ImmPointerNull(), nil
	default:
		return g.b.ImmInt(0), nil
	}
}
