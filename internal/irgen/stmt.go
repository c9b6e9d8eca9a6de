package irgen

import "github.com/gundermanc/gsc/internal/ast"

func (g *Generator) emitBlock(block *ast.Node) error {
	for _, stmt := range block.Children {
		if err := g.emitStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitStatement(n *ast.Node) error {
	switch n.Rule {
	case ast.RuleBlock:
		g.regs.Push()
		defer g.regs.Pop()
		return g.emitBlock(n)
	case ast.RuleIf:
		return g.emitIf(n)
	case ast.RuleFor:
		return g.emitFor(n)
	case ast.RuleReturn:
		return g.emitReturn(n)
	default:
		_, err := g.emitExpr(n)
		return err
	}
}

// emitIf lowers `if (c) A else B` per spec.md's control-flow lowering:
// evaluate c, jump past A to L_false when c is false, emit A, jump to
// L_end, bind L_false, emit B (if present), bind L_end.
func (g *Generator) emitIf(n *ast.Node) error {
	cond, err := g.emitExpr(n.Child(0))
	if err != nil {
		return err
	}
	lFalse := g.b.Label()
	g.jumpIfFalse(cond, lFalse)

	if err := g.emitStatement(n.Child(1)); err != nil {
		return err
	}

	if n.ChildCount() > 2 {
		lEnd := g.b.Label()
		g.b.Jump(lEnd)
		g.b.Bind(lFalse)
		if err := g.emitStatement(n.Child(2)); err != nil {
			return err
		}
		g.b.Bind(lEnd)
	} else {
		g.b.Bind(lFalse)
	}
	return nil
}

// emitFor lowers the 4-slot for node (also the desugared form of while):
// init; bind L_cond; if cond present, jump past body to L_end when false;
// body; update; jump L_cond; bind L_end. Missing init/cond/update are
// elided faithfully since their wrapper nodes are simply empty.
func (g *Generator) emitFor(n *ast.Node) error {
	g.regs.Push()
	defer g.regs.Pop()

	initWrap, condWrap, updateWrap, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3)

	if initWrap.ChildCount() > 0 {
		if _, err := g.emitExpr(initWrap.Child(0)); err != nil {
			return err
		}
	}

	lCond := g.b.Label()
	lEnd := g.b.Label()
	g.b.Bind(lCond)

	if condWrap.ChildCount() > 0 {
		cond, err := g.emitExpr(condWrap.Child(0))
		if err != nil {
			return err
		}
		g.jumpIfFalse(cond, lEnd)
	}

	if err := g.emitStatement(body); err != nil {
		return err
	}

	if updateWrap.ChildCount() > 0 {
		if _, err := g.emitExpr(updateWrap.Child(0)); err != nil {
			return err
		}
	}

	g.b.Jump(lCond)
	g.b.Bind(lEnd)
	return nil
}

// emitReturn lowers an explicit `return [expr];`. A bare `return;` (void
// functions only, enforced by sema) still needs a real return emitted
// here rather than relying solely on the function's trailing safety-floor
// return, since control must actually leave the function at this point.
func (g *Generator) emitReturn(n *ast.Node) error {
	if n.ChildCount() == 0 {
		g.emitDefaultReturn(g.curReturnType)
		return nil
	}
	v, err := g.emitExpr(n.Child(0))
	if err != nil {
		return err
	}
	switch ClassOf(g.curReturnType.Format) {
	case ClassFloat:
		g.b.ReturnFloat(v)
	case ClassPointer:
		g.b.ReturnPointer(v)
	default:
		g.b.ReturnInt(v)
	}
	return nil
}
