package sema

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/symbols"
)

func (a *Analyzer) analyzeSpecs(specsWrap *ast.Node) error {
	for _, spec := range specsWrap.Children {
		if err := a.analyzeSpec(spec); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeSpec(spec *ast.Node) error {
	typeNode := spec.Child(1)
	name := typeNode.StringVal
	funcsWrap := spec.Child(2)
	propsWrap := spec.Child(3)

	prevSpec := a.curSpec
	a.curSpec = name
	defer func() { a.curSpec = prevSpec }()

	if err := a.analyzeFunctions(name, funcsWrap); err != nil {
		return err
	}
	return a.analyzeProperties(name, propsWrap)
}

func (a *Analyzer) analyzeFunctions(specName string, funcsWrap *ast.Node) error {
	for _, fn := range funcsWrap.Children {
		if err := a.analyzeFunction(specName, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeFunction(specName string, fn *ast.Node) error {
	native := fn.Child(1).BoolVal
	retTypeNode := fn.Child(2)
	paramsNode := fn.Child(4)
	block := fn.Child(5)

	if native {
		return nil
	}

	retType, err := a.lookupType(retTypeNode)
	if err != nil {
		return err
	}

	a.table.Push()
	defer a.table.Pop()

	if specName != "" {
		selfType, ok := a.table.Get(specName)
		if !ok {
			return gserr.New(gserr.SemanticUndefinedType, fn.Pos, "undefined spec %q", specName)
		}
		if err := a.table.Put("this", &symbols.Symbol{
			Kind: symbols.KindFunction, Name: symbols.MangleLocal("this"),
			ReturnType: selfType, Role: symbols.RoleParameter,
		}); err != nil {
			return gserr.Wrap(gserr.SemanticDuplicateParameter, fn.Pos, err, "'this' collides with a parameter")
		}
	}

	for _, param := range paramsNode.Children {
		pt, err := a.lookupType(param.Child(0))
		if err != nil {
			return err
		}
		pname := param.Child(1).StringVal
		if err := a.table.Put(pname, &symbols.Symbol{
			Kind: symbols.KindFunction, Name: symbols.MangleLocal(pname),
			ReturnType: pt, Role: symbols.RoleParameter,
		}); err != nil {
			return gserr.Wrap(gserr.SemanticDuplicateParameter, param.Pos, err, "duplicate parameter %q", pname)
		}
	}

	prevRet, prevSetter := a.curReturnType, a.inSetter
	a.curReturnType, a.inSetter = retType, false
	defer func() { a.curReturnType, a.inSetter = prevRet, prevSetter }()

	return a.walkBlockBody(block)
}

func (a *Analyzer) analyzeProperties(specName string, propsWrap *ast.Node) error {
	for _, prop := range propsWrap.Children {
		typeNode := prop.Child(0)
		propType, err := a.lookupType(typeNode)
		if err != nil {
			return err
		}
		if getter := prop.Child(2); getter != nil && getter.ChildCount() > 1 {
			if err := a.analyzePropertyFunction(specName, getter.Child(1), propType, false); err != nil {
				return err
			}
		}
		if setter := prop.Child(3); setter != nil && setter.ChildCount() > 1 {
			if err := a.analyzePropertyFunction(specName, setter.Child(1), propType, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// analyzePropertyFunction type-checks a property accessor's user-supplied
// body block, if any (an accessor declared with just ';' is auto-backed
// and has no body to walk).
func (a *Analyzer) analyzePropertyFunction(specName string, block *ast.Node, propType *symbols.Symbol, isSetter bool) error {
	a.table.Push()
	defer a.table.Pop()

	selfType, ok := a.table.Get(specName)
	if !ok {
		return gserr.New(gserr.SemanticUndefinedType, block.Pos, "undefined spec %q", specName)
	}
	if err := a.table.Put("this", &symbols.Symbol{
		Kind: symbols.KindFunction, Name: symbols.MangleLocal("this"),
		ReturnType: selfType, Role: symbols.RoleParameter,
	}); err != nil {
		return err
	}

	prevRet, prevSetter := a.curReturnType, a.inSetter
	a.inSetter = isSetter
	if isSetter {
		if err := a.table.Put("value", &symbols.Symbol{
			Kind: symbols.KindFunction, Name: symbols.MangleLocal("value"),
			ReturnType: propType, Role: symbols.RoleParameter,
		}); err != nil {
			return err
		}
		a.curReturnType = symbols.Void
	} else {
		a.curReturnType = propType
	}
	defer func() { a.curReturnType, a.inSetter = prevRet, prevSetter }()

	return a.walkBlockBody(block)
}

// walkBlockBody walks a block's statements in the CURRENT frame, without
// pushing a new one — used for a function/accessor's top-level body, whose
// scope is the parameter frame already pushed by the caller. Nested block
// statements push their own frame via walkStatement.
func (a *Analyzer) walkBlockBody(block *ast.Node) error {
	for _, stmt := range block.Children {
		if err := a.walkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) walkStatement(n *ast.Node) error {
	switch n.Rule {
	case ast.RuleBlock:
		a.table.Push()
		defer a.table.Pop()
		return a.walkBlockBody(n)
	case ast.RuleIf:
		return a.walkIf(n)
	case ast.RuleFor:
		return a.walkFor(n)
	case ast.RuleReturn:
		return a.walkReturn(n)
	default:
		_, err := a.inferExpr(n)
		return err
	}
}

func (a *Analyzer) walkIf(n *ast.Node) error {
	condType, err := a.inferExpr(n.Child(0))
	if err != nil {
		return err
	}
	if condType.Format != symbols.FormatBool {
		return gserr.New(gserr.SemanticNonBoolIfCondition, n.Child(0).Pos, "if condition must be bool")
	}
	if err := a.walkStatement(n.Child(1)); err != nil {
		return err
	}
	if n.ChildCount() > 2 {
		return a.walkStatement(n.Child(2))
	}
	return nil
}

func (a *Analyzer) walkFor(n *ast.Node) error {
	a.table.Push()
	defer a.table.Pop()

	initWrap, condWrap, updateWrap, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3)

	if initWrap.ChildCount() > 0 {
		if _, err := a.inferExpr(initWrap.Child(0)); err != nil {
			return err
		}
	}
	if condWrap.ChildCount() > 0 {
		condType, err := a.inferExpr(condWrap.Child(0))
		if err != nil {
			return err
		}
		if condType.Format != symbols.FormatBool {
			return gserr.New(gserr.SemanticNonBoolLoopCondition, condWrap.Child(0).Pos, "loop condition must be bool")
		}
	}
	if updateWrap.ChildCount() > 0 {
		if _, err := a.inferExpr(updateWrap.Child(0)); err != nil {
			return err
		}
	}
	return a.walkStatement(body)
}

func (a *Analyzer) walkReturn(n *ast.Node) error {
	if n.ChildCount() == 0 {
		if !a.curReturnType.IsVoid() {
			return gserr.New(gserr.SemanticReturnTypeMismatch, n.Pos, "missing return value for non-void function")
		}
		return nil
	}
	if a.inSetter {
		return gserr.New(gserr.SemanticReturnFromPropertySet, n.Pos, "property setter cannot return a value")
	}
	if a.curReturnType.IsVoid() {
		return gserr.New(gserr.SemanticReturnInVoid, n.Pos, "void function cannot return a value")
	}
	exprType, err := a.inferExpr(n.Child(0))
	if err != nil {
		return err
	}
	if !exprType.Equals(a.curReturnType) {
		return gserr.New(gserr.SemanticReturnTypeMismatch, n.Child(0).Pos,
			"return type %s does not match declared return type %s", exprType.Name, a.curReturnType.Name)
	}
	return nil
}
