package irgen

import (
	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/symbols"
)

// Generator walks an annotated module AST twice against a Builder: a
// prescan that assigns function-pointer-table indices and spec property
// offsets, then a body pass that emits IR reading the semantic analyzer's
// annotations. It re-derives callee/property symbols by re-mangling from
// AST structure against its own symbol/register tables rather than a
// second annotation slot, mirroring the single-annotation-slot invariant
// established by internal/sema (see sema/expr.go's inferExpr doc comment).
type Generator struct {
	table *symbols.Table // the semantic analyzer's resolved declarations
	funcs *FuncTable
	sizes *TypeSizeTable
	regs  *RegTable
	b     Builder

	curSpec       string
	curReturnType *symbols.Symbol
}

// New creates a Generator that emits against b, resolving types and
// signatures from the symbol table populated by a prior, successful
// sema.Analyzer.Analyze call.
func New(table *symbols.Table, b Builder) *Generator {
	return &Generator{
		table: table,
		funcs: NewFuncTable(),
		sizes: NewTypeSizeTable(),
		regs:  NewRegTable(),
		b:     b,
	}
}

// funcUnit is one function-shaped thing the generator must reserve a
// table slot for and, if it has a body, emit: a module-level function, a
// spec member function or constructor, or a declared property accessor.
type funcUnit struct {
	MangledName string
	SpecName    string
	HasSelf     bool
	ParamNames  []string
	Sym         *symbols.Symbol // resolved function symbol (ParamTypes, ReturnType)
	Body        *ast.Node       // nil for native functions and bodyless (auto-backed) accessors
}

// Generate runs both passes over module and returns the function-pointer
// table, ready for a downstream Module artifact to pair with the emitted
// IR fragments.
func (g *Generator) Generate(module *ast.Node) (*FuncTable, error) {
	specsWrap := module.Child(len(module.Children) - 2)
	funcsWrap := module.Child(len(module.Children) - 1)

	units, err := g.collectUnits(funcsWrap, specsWrap)
	if err != nil {
		return nil, err
	}

	if err := g.computeSizes(specsWrap); err != nil {
		return nil, err
	}

	for _, u := range units {
		g.funcs.Assign(u.MangledName)
	}

	for _, u := range units {
		if u.Body == nil {
			continue
		}
		if err := g.emitFunction(u); err != nil {
			return nil, err
		}
	}

	return g.funcs, nil
}

// collectUnits walks the module in the exact order prescan and emission
// must agree on: module-level functions first, then each spec's member
// functions, then each spec's declared property accessors.
func (g *Generator) collectUnits(funcsWrap, specsWrap *ast.Node) ([]*funcUnit, error) {
	var units []*funcUnit

	for _, fn := range funcsWrap.Children {
		u, err := g.functionUnit("", fn)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	for _, spec := range specsWrap.Children {
		specName := spec.Child(1).StringVal
		for _, fn := range spec.Child(2).Children {
			u, err := g.functionUnit(specName, fn)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		}
		for _, prop := range spec.Child(3).Children {
			propName := prop.Child(1).StringVal
			if getter := prop.Child(2); getter != nil {
				u, err := g.accessorUnit(specName, symbols.MangleGetter(specName, propName), getter)
				if err != nil {
					return nil, err
				}
				units = append(units, u)
			}
			if setter := prop.Child(3); setter != nil {
				u, err := g.accessorUnit(specName, symbols.MangleSetter(specName, propName), setter)
				if err != nil {
					return nil, err
				}
				u.ParamNames = []string{"value"}
				units = append(units, u)
			}
		}
	}

	return units, nil
}

func (g *Generator) functionUnit(specName string, fn *ast.Node) (*funcUnit, error) {
	native := fn.Child(1).BoolVal
	name := fn.Child(3).StringVal
	paramsNode := fn.Child(4)
	block := fn.Child(5)

	argTypeNames := make([]string, 0, paramsNode.ChildCount())
	paramNames := make([]string, 0, paramsNode.ChildCount())
	for _, param := range paramsNode.Children {
		t, err := g.resolveType(param.Child(0))
		if err != nil {
			return nil, err
		}
		argTypeNames = append(argTypeNames, t.Name)
		paramNames = append(paramNames, param.Child(1).StringVal)
	}

	mangled := symbols.MangleFunction(specName, name, argTypeNames)
	sym, ok := g.table.Get(mangled)
	if !ok {
		return nil, gserr.New(gserr.IRInvalidCall, fn.Pos, "no registered signature for function %q", mangled)
	}

	u := &funcUnit{MangledName: mangled, SpecName: specName, HasSelf: specName != "", ParamNames: paramNames, Sym: sym}
	if !native {
		u.Body = block
	}
	return u, nil
}

func (g *Generator) accessorUnit(specName, mangled string, accessor *ast.Node) (*funcUnit, error) {
	sym, ok := g.table.Get(mangled)
	if !ok {
		return nil, gserr.New(gserr.IRInvalidCall, accessor.Pos, "no registered signature for accessor %q", mangled)
	}
	u := &funcUnit{MangledName: mangled, SpecName: specName, HasSelf: true, Sym: sym}
	if accessor.ChildCount() > 1 {
		u.Body = accessor.Child(1)
	}
	return u, nil
}

// computeSizes assigns each spec's properties a byte offset, in
// declaration order, and records the spec's total instance size, both
// keyed by mangled spec name in the type-size table member lowering
// reads from.
func (g *Generator) computeSizes(specsWrap *ast.Node) error {
	for _, spec := range specsWrap.Children {
		specName := spec.Child(1).StringVal
		offset := 0
		for _, prop := range spec.Child(3).Children {
			t, err := g.resolveType(prop.Child(0))
			if err != nil {
				return err
			}
			g.sizes.SetProp(specName, prop.Child(1).StringVal, offset, t)
			offset += t.SizeBytes
		}
		g.sizes.SetSize(specName, offset)
	}
	return nil
}

// resolveType mirrors sema's lookupType for the subset this package
// needs: plain types resolve directly, generic applications are resolved
// by re-mangling and must already be cached in the table (sema's own pass
// resolved and cached every generic application this same AST uses).
func (g *Generator) resolveType(typeNode *ast.Node) (*symbols.Symbol, error) {
	if typeNode.ChildCount() == 0 {
		sym, ok := g.table.Get(typeNode.StringVal)
		if !ok {
			return nil, gserr.New(gserr.IRInvalidCall, typeNode.Pos, "undefined type %q", typeNode.StringVal)
		}
		return sym, nil
	}
	argNames := make([]string, 0, typeNode.ChildCount())
	for _, child := range typeNode.Children {
		t, err := g.resolveType(child)
		if err != nil {
			return nil, err
		}
		argNames = append(argNames, t.Name)
	}
	applied := symbols.MangleGenericApplied(typeNode.StringVal, argNames)
	sym, ok := g.table.Get(applied)
	if !ok {
		return nil, gserr.New(gserr.IRInvalidCall, typeNode.Pos, "undefined generic application %q", applied)
	}
	return sym, nil
}

func (g *Generator) emitFunction(u *funcUnit) error {
	idx, _ := g.funcs.Index(u.MangledName)
	argBuf, self := g.b.FunctionStart(idx, u.HasSelf)

	g.regs.Push()
	defer g.regs.Pop()

	if u.HasSelf {
		selfType, ok := g.table.Get(u.SpecName)
		if !ok {
			return gserr.New(gserr.IRInvalidCall, u.Body.Pos, "undefined spec %q", u.SpecName)
		}
		g.regs.Put("this", RegEntry{Type: selfType, Base: self, Direct: true})
	}

	offset := 0
	for i, pname := range u.ParamNames {
		pt := u.Sym.ParamTypes[i]
		g.regs.Put(pname, RegEntry{Type: pt, Base: argBuf, Offset: offset})
		offset += pt.SizeBytes
	}

	prevSpec, prevRet := g.curSpec, g.curReturnType
	g.curSpec, g.curReturnType = u.SpecName, u.Sym.ReturnType
	defer func() { g.curSpec, g.curReturnType = prevSpec, prevRet }()

	if err := g.emitBlock(u.Body); err != nil {
		return err
	}

	// Safety floor: no control-flow analysis proves every path returns, so
	// every function body ends with a default-zero return matching its
	// declared type.
	g.emitDefaultReturn(u.Sym.ReturnType)
	g.b.FunctionEnd()
	return nil
}

func (g *Generator) emitDefaultReturn(t *symbols.Symbol) {
	switch ClassOf(t.Format) {
	case ClassFloat:
		g.b.ReturnFloat(g.b.ImmFloat(0))
	case ClassPointer:
		g.b.ReturnPointer(g.b.ImmPointerNull())
	default:
		g.b.ReturnInt(g.b.ImmInt(0))
	}
}

// jumpIfFalse inverts cond via Xor (the builder exposes no direct
// jump-if-false primitive) and emits jump-if-true to l, matching the
// if/for lowering spec.md describes.
func (g *Generator) jumpIfFalse(cond Reg, l Label) {
	g.b.JumpIfTrue(g.b.Xor(cond), l)
}

func (g *Generator) loadTyped(t *symbols.Symbol, base Reg, offset int) Reg {
	switch ClassOf(t.Format) {
	case ClassFloat:
		return g.b.LoadFloat32(base, offset)
	case ClassPointer:
		return g.b.LoadPointer(base, offset)
	default:
		if t.SizeBytes == 1 {
			return g.b.LoadInt8(base, offset)
		}
		return g.b.LoadInt32(base, offset)
	}
}

func (g *Generator) storeTyped(t *symbols.Symbol, base Reg, offset int, v Reg) {
	switch ClassOf(t.Format) {
	case ClassFloat:
		g.b.StoreFloat32(base, offset, v)
	case ClassPointer:
		g.b.StorePointer(base, offset, v)
	default:
		if t.SizeBytes == 1 {
			g.b.StoreInt8(base, offset, v)
		} else {
			g.b.StoreInt32(base, offset, v)
		}
	}
}
