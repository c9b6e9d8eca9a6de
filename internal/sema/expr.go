package sema

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/symbols"
)

// inferExpr computes n's value type, annotates n with it (via
// ast.Node.SetSymbol), and returns it. Every expression node is annotated
// with the SYMBOL OF ITS VALUE TYPE, never with a callee/property symbol —
// that keeps "annotation == this expression's value type" a single,
// uniform invariant the IR generator can rely on. Where the IR generator
// additionally needs to know which function/property/constructor a
// call-shaped node resolves to, it re-derives that by re-mangling from the
// node's own name/argument structure against its own rebuilt register
// table, rather than needing a second annotation slot.
func (a *Analyzer) inferExpr(n *ast.Node) (*symbols.Symbol, error) {
	var t *symbols.Symbol
	var err error

	switch n.Rule {
	case ast.RuleIntLiteral:
		t = symbols.Int32
	case ast.RuleFloatLiteral:
		t = symbols.Float32
	case ast.RuleBoolLiteral:
		t = symbols.Bool
	case ast.RuleCharLiteral:
		t = symbols.Int8
	case ast.RuleStringLiteral:
		t = symbols.String
	case ast.RuleAnyType:
		t = symbols.AnyType
	case ast.RuleSymbolRef:
		t, err = a.inferSymbolRef(n)
	case ast.RuleAssign:
		t, err = a.inferAssign(n)
	case ast.RuleExpression:
		t, err = a.inferExpr(n.Child(0))
	case ast.RuleLogOr, ast.RuleLogAnd:
		t, err = a.inferBoolBinary(n)
	case ast.RuleLogNot:
		t, err = a.inferLogNot(n)
	case ast.RuleEquals, ast.RuleNotEquals:
		t, err = a.inferEquality(n)
	case ast.RuleLess, ast.RuleLessEquals, ast.RuleGreater, ast.RuleGreaterEquals:
		t, err = a.inferRelational(n)
	case ast.RuleAdd:
		t, err = a.inferArith(n, gserr.SemanticInvalidTypeInAdd)
	case ast.RuleSub, ast.RuleMul, ast.RuleDiv, ast.RuleMod:
		t, err = a.inferArith(n, gserr.SemanticNonNumericOperands)
	case ast.RuleMember:
		t, err = a.inferMember(n)
	case ast.RuleCall:
		t, err = a.inferCall(n, "")
	case ast.RuleNew:
		t, err = a.inferNew(n)
	case ast.RuleDefault:
		t, err = a.lookupType(n.Child(0))
	default:
		return nil, gserr.New(gserr.IRNotImplemented, n.Pos, "cannot type-check node rule %s", n.Rule)
	}

	if err != nil {
		return nil, err
	}
	n.SetSymbol(t)
	return t, nil
}

func (a *Analyzer) requireNonVoid(t *symbols.Symbol, pos gserr.Position) error {
	if t.Format == symbols.FormatVoid {
		return gserr.New(gserr.SemanticVoidInExpression, pos, "void value used in expression")
	}
	return nil
}

func (a *Analyzer) inferSymbolRef(n *ast.Node) (*symbols.Symbol, error) {
	sym, ok := a.table.Get(n.StringVal)
	if !ok {
		return nil, gserr.New(gserr.SemanticUndefinedVariable, n.Pos, "undefined variable %q", n.StringVal)
	}
	return sym.TypeSymbol(), nil
}

// inferAssign implements the three-branch assignment-scoping rule: assign
// to an existing local in the current frame, assign to an existing local
// in an outer frame (no shadowing), or declare a brand-new local in the
// current frame typed from the right-hand side, since this grammar has no
// separate variable-declaration syntax.
func (a *Analyzer) inferAssign(n *ast.Node) (*symbols.Symbol, error) {
	lhs, rhs := n.Child(0), n.Child(1)

	rhsType, err := a.inferExpr(rhs)
	if err != nil {
		return nil, err
	}
	if err := a.requireNonVoid(rhsType, rhs.Pos); err != nil {
		return nil, err
	}

	if lhs.Rule == ast.RuleMember {
		return a.inferMemberAssign(lhs, rhsType)
	}

	if lhs.Rule != ast.RuleSymbolRef {
		return nil, gserr.New(gserr.SemanticTypeMismatchInAssign, lhs.Pos, "invalid assignment target")
	}
	if lhs.StringVal == "this" {
		return nil, gserr.New(gserr.SemanticThisAssigned, lhs.Pos, "cannot assign to 'this'")
	}

	if existing, ok := a.table.GetTopOnly(lhs.StringVal); ok {
		if !existing.TypeSymbol().Equals(rhsType) {
			return nil, gserr.New(gserr.SemanticTypeMismatchInAssign, n.Pos,
				"cannot assign %s to existing variable %q of type %s", rhsType.Name, lhs.StringVal, existing.TypeSymbol().Name)
		}
		lhs.SetSymbol(existing.TypeSymbol())
		return rhsType, nil
	}

	for depth := 1; depth < a.table.Depth(); depth++ {
		if existing, ok := a.table.GetFrame(depth, lhs.StringVal); ok {
			if !existing.TypeSymbol().Equals(rhsType) {
				return nil, gserr.New(gserr.SemanticTypeMismatchInAssign, n.Pos,
					"cannot assign %s to existing variable %q of type %s", rhsType.Name, lhs.StringVal, existing.TypeSymbol().Name)
			}
			lhs.SetSymbol(existing.TypeSymbol())
			return rhsType, nil
		}
	}

	newLocal := &symbols.Symbol{
		Kind: symbols.KindFunction, Name: symbols.MangleLocal(lhs.StringVal),
		ReturnType: rhsType, Role: symbols.RoleLocalVariable,
	}
	if err := a.table.Put(lhs.StringVal, newLocal); err != nil {
		return nil, gserr.Wrap(gserr.SemanticTypeMismatchInAssign, n.Pos, err, "cannot declare %q", lhs.StringVal)
	}
	lhs.SetSymbol(rhsType)
	return rhsType, nil
}

func (a *Analyzer) inferMemberAssign(member *ast.Node, rhsType *symbols.Symbol) (*symbols.Symbol, error) {
	left, right := member.Child(0), member.Child(1)
	if right.Rule != ast.RuleSymbolRef {
		return nil, gserr.New(gserr.SemanticPropertyNotFound, member.Pos, "assignment target must be a property")
	}

	leftType, err := a.inferExpr(left)
	if err != nil {
		return nil, err
	}
	if err := a.checkAccessibleSpecType(leftType, member.Pos); err != nil {
		return nil, err
	}

	key := symbols.MangleSetter(leftType.Name, right.StringVal)
	setter, ok := a.table.Get(key)
	if !ok {
		return nil, gserr.New(gserr.SemanticPropertyNotFound, member.Pos, "no setter for property %q on %s", right.StringVal, leftType.Name)
	}
	if err := a.checkAccess(setter, member.Pos); err != nil {
		return nil, err
	}
	if !setter.ParamTypes[0].Equals(rhsType) {
		return nil, gserr.New(gserr.SemanticTypeMismatchInAssign, member.Pos,
			"cannot assign %s to property %q of type %s", rhsType.Name, right.StringVal, setter.ParamTypes[0].Name)
	}
	member.SetSymbol(setter.ParamTypes[0])
	return rhsType, nil
}

func (a *Analyzer) inferBoolBinary(n *ast.Node) (*symbols.Symbol, error) {
	l, err := a.inferExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	r, err := a.inferExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	if l.Format != symbols.FormatBool || r.Format != symbols.FormatBool {
		return nil, gserr.New(gserr.SemanticNonBoolOperands, n.Pos, "operands of %s must be bool", n.Rule)
	}
	return symbols.Bool, nil
}

func (a *Analyzer) inferLogNot(n *ast.Node) (*symbols.Symbol, error) {
	operand, err := a.inferExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	if operand.Format != symbols.FormatBool {
		return nil, gserr.New(gserr.SemanticNonBoolInNot, n.Pos, "operand of '!' must be bool")
	}
	return symbols.Bool, nil
}

func (a *Analyzer) inferEquality(n *ast.Node) (*symbols.Symbol, error) {
	l, err := a.inferExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	r, err := a.inferExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	if err := a.requireNonVoid(l, n.Child(0).Pos); err != nil {
		return nil, err
	}
	if err := a.requireNonVoid(r, n.Child(1).Pos); err != nil {
		return nil, err
	}
	if !l.Equals(r) {
		return nil, gserr.New(gserr.SemanticUnmatchingTypeInOp, n.Pos, "cannot compare %s with %s", l.Name, r.Name)
	}
	return symbols.Bool, nil
}

func (a *Analyzer) inferRelational(n *ast.Node) (*symbols.Symbol, error) {
	l, err := a.inferExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	r, err := a.inferExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	if !isNumeric(l) || !isNumeric(r) {
		return nil, gserr.New(gserr.SemanticNonNumericOperands, n.Pos, "operands of %s must be numeric", n.Rule)
	}
	if !l.Equals(r) {
		return nil, gserr.New(gserr.SemanticUnmatchingTypeInOp, n.Pos, "mismatched operand types %s and %s", l.Name, r.Name)
	}
	return symbols.Bool, nil
}

// inferArith handles +, -, *, /, % including the unary-minus desugaring,
// whose phantom left operand is an any-type node that always compares
// equal. nonNumericCode lets '+' report the more specific
// SemanticInvalidTypeInAdd while the others report SemanticNonNumericOperands.
// '+' additionally allows both operands to be string, yielding string,
// per spec.md §4.4.
func (a *Analyzer) inferArith(n *ast.Node, nonNumericCode gserr.Code) (*symbols.Symbol, error) {
	left, right := n.Child(0), n.Child(1)
	l, err := a.inferExpr(left)
	if err != nil {
		return nil, err
	}
	r, err := a.inferExpr(right)
	if err != nil {
		return nil, err
	}

	if nonNumericCode == gserr.SemanticInvalidTypeInAdd && isString(l) && isString(r) {
		return symbols.String, nil
	}

	phantom := left.Rule == ast.RuleAnyType
	if !phantom && !isNumeric(l) {
		return nil, gserr.New(nonNumericCode, left.Pos, "non-numeric operand %s", l.Name)
	}
	if !isNumeric(r) {
		return nil, gserr.New(nonNumericCode, right.Pos, "non-numeric operand %s", r.Name)
	}
	if !phantom && !l.Equals(r) {
		return nil, gserr.New(gserr.SemanticUnmatchingTypeInOp, n.Pos, "mismatched operand types %s and %s", l.Name, r.Name)
	}
	return r, nil
}

func isNumeric(t *symbols.Symbol) bool {
	return t.Format == symbols.FormatInt || t.Format == symbols.FormatFloat
}

func isString(t *symbols.Symbol) bool {
	return t.Format == symbols.FormatPointer && t.Name == "string"
}

func (a *Analyzer) inferMember(n *ast.Node) (*symbols.Symbol, error) {
	left, right := n.Child(0), n.Child(1)
	leftType, err := a.inferExpr(left)
	if err != nil {
		return nil, err
	}
	if err := a.checkAccessibleSpecType(leftType, n.Pos); err != nil {
		return nil, err
	}

	if right.Rule == ast.RuleCall {
		return a.inferCall(right, leftType.Name)
	}

	key := symbols.MangleGetter(leftType.Name, right.StringVal)
	getter, ok := a.table.Get(key)
	if !ok {
		return nil, gserr.New(gserr.SemanticPropertyNotFound, n.Pos, "no getter for property %q on %s", right.StringVal, leftType.Name)
	}
	if err := a.checkAccess(getter, n.Pos); err != nil {
		return nil, err
	}
	return getter.ReturnType, nil
}

func (a *Analyzer) checkAccessibleSpecType(t *symbols.Symbol, pos gserr.Position) error {
	if t.Kind != symbols.KindType || t.Format != symbols.FormatPointer {
		return gserr.New(gserr.SemanticPropertyNotFound, pos, "%s is not a spec instance", t.Name)
	}
	return nil
}

// checkAccess enforces spec member visibility: public members are always
// reachable, concealed/internal members only from code belonging to the
// same spec (there is no cross-module linking in this compiler, so
// concealed and internal are equivalent here).
func (a *Analyzer) checkAccess(member *symbols.Symbol, pos gserr.Position) error {
	if member.Access == symbols.AccessPublic {
		return nil
	}
	if member.SpecName == a.curSpec {
		return nil
	}
	return gserr.New(gserr.SemanticNotAccessible, pos, "%s is not accessible from here", member.Name)
}

func (a *Analyzer) inferCall(n *ast.Node, specName string) (*symbols.Symbol, error) {
	name := n.Child(0).StringVal
	argsNode := n.Child(1)

	// A call whose name resolves to a type rather than a function is the
	// function-call-like typecast syntax of spec.md §4.4, e.g. int32(3.5).
	if specName == "" {
		if target, ok := a.table.Get(name); ok && target.Kind == symbols.KindType {
			return a.inferCast(n, target)
		}
	}

	argTypeNames := make([]string, 0, argsNode.ChildCount())
	for _, arg := range argsNode.Children {
		at, err := a.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		if err := a.requireNonVoid(at, arg.Pos); err != nil {
			return nil, err
		}
		argTypeNames = append(argTypeNames, at.Name)
	}

	key := symbols.MangleFunction(specName, name, argTypeNames)
	fn, ok := a.table.Get(key)
	if !ok {
		return nil, gserr.New(gserr.SemanticFunctionOverloadNotFound, n.Pos, "no matching overload for %q", name)
	}
	if err := a.checkAccess(fn, n.Pos); err != nil {
		return nil, err
	}
	return fn.ReturnType, nil
}

// inferCast type-checks the single argument of a function-call-like
// typecast against the allowed-cast matrix of spec.md §4.4: any numeric-or-
// bool source may cast to int or float; int, bool, or char (int8) may cast
// to bool; float to bool is always rejected. The node is annotated with
// target, a type symbol, matching the call-node annotation the parser/IR
// generator already expect for ordinary calls (whose annotation is the
// callee's return type).
func (a *Analyzer) inferCast(n *ast.Node, target *symbols.Symbol) (*symbols.Symbol, error) {
	argsNode := n.Child(1)
	if argsNode.ChildCount() != 1 {
		return nil, gserr.New(gserr.SemanticFunctionOverloadNotFound, n.Pos, "typecast %s(...) takes exactly one argument", target.Name)
	}

	arg := argsNode.Child(0)
	srcType, err := a.inferExpr(arg)
	if err != nil {
		return nil, err
	}
	if err := a.requireNonVoid(srcType, arg.Pos); err != nil {
		return nil, err
	}

	numericOrBool := isNumeric(srcType) || srcType.Format == symbols.FormatBool
	switch target.Format {
	case symbols.FormatInt, symbols.FormatFloat:
		if !numericOrBool {
			return nil, gserr.New(gserr.SemanticUnsupportedTypecast, n.Pos, "cannot cast %s to %s", srcType.Name, target.Name)
		}
	case symbols.FormatBool:
		if srcType.Format == symbols.FormatFloat {
			return nil, gserr.New(gserr.SemanticUnsupportedTypecast, n.Pos, "cannot cast float to bool")
		}
		if !numericOrBool {
			return nil, gserr.New(gserr.SemanticUnsupportedTypecast, n.Pos, "cannot cast %s to %s", srcType.Name, target.Name)
		}
	default:
		return nil, gserr.New(gserr.SemanticUnsupportedTypecast, n.Pos, "cannot cast to %s", target.Name)
	}

	return target, nil
}

func (a *Analyzer) inferNew(n *ast.Node) (*symbols.Symbol, error) {
	typeNode, argsNode := n.Child(0), n.Child(1)
	instType, err := a.lookupType(typeNode)
	if err != nil {
		return nil, err
	}

	argTypeNames := make([]string, 0, argsNode.ChildCount())
	for _, arg := range argsNode.Children {
		at, err := a.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		argTypeNames = append(argTypeNames, at.Name)
	}

	key := symbols.MangleFunction(instType.Name, symbols.ConstructorName(), argTypeNames)
	ctor, ok := a.table.Get(key)
	if !ok {
		return nil, gserr.New(gserr.SemanticConstructorOverloadNotFound, n.Pos, "no matching constructor for %s", instType.Name)
	}
	if err := a.checkAccess(ctor, n.Pos); err != nil {
		return nil, err
	}
	return instType, nil
}
