// Package sema implements the two-pass semantic analyzer: a prescan that
// registers every declared type, function, property, and generic template
// under its mangled name, followed by a full walk that type-checks every
// function/property body and annotates each expression node with its
// resolved value-type symbol for the IR generator to read.
package sema

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/symbols"
)

// Analyzer walks a module AST twice: Prescan registers every declaration,
// Analyze type-checks bodies against what Prescan found. Both phases share
// one symbol table, whose bottom frame holds every top-level and spec
// member declaration (mangled names keep specs/functions/properties from
// colliding), while nested frames hold only local variables and
// parameters.
type Analyzer struct {
	table *symbols.Table

	// curSpec is the mangled name of the spec whose member body is
	// currently being walked, or "" at module scope. Used for access-
	// modifier enforcement and for resolving the implicit "this".
	curSpec string

	// inSetter is true while walking a property setter body, where a
	// `return <expr>;` is rejected (spec.md SemanticReturnFromPropertySet).
	inSetter bool

	// curReturnType is the declared return type of the function/getter/
	// setter body currently being walked.
	curReturnType *symbols.Symbol

	// strictPackageNames gates the title-case enforcement in
	// checkPackageName. Disabled via NewWithOptions for callers whose
	// config.Config.StrictPackageNames is false.
	strictPackageNames bool
}

// New creates an Analyzer with a fresh symbol table seeded with the
// built-in primitive types and strict package-name checking enabled.
func New() *Analyzer {
	return NewWithOptions(Options{StrictPackageNames: true})
}

// Options configures an Analyzer beyond its symbol table.
type Options struct {
	// StrictPackageNames, when true, requires every dot-separated package
	// name segment to start with an upper-case letter. Mirrors
	// config.Config.StrictPackageNames.
	StrictPackageNames bool
}

// NewWithOptions creates an Analyzer with a fresh symbol table seeded with
// the built-in primitive types, applying opts.
func NewWithOptions(opts Options) *Analyzer {
	t := symbols.NewTable()
	for _, b := range symbols.Builtins {
		_ = t.PutBottom(b.Name, b)
	}
	return &Analyzer{table: t, strictPackageNames: opts.StrictPackageNames}
}

// Table exposes the analyzer's fully-populated symbol table once Analyze
// has returned successfully, so the IR generator can resolve call/property
// targets against the same declarations instead of re-deriving them.
func (a *Analyzer) Table() *symbols.Table {
	return a.table
}

// Analyze runs both passes over module (an ast.RuleModule node) and
// annotates every node it visits. It returns the first error encountered;
// there is no error recovery, matching the parser's fail-fast contract.
func (a *Analyzer) Analyze(module *ast.Node) error {
	if err := a.checkPackageName(module.Child(0).StringVal); err != nil {
		return err
	}

	specsWrap := module.Child(len(module.Children) - 2)
	funcsWrap := module.Child(len(module.Children) - 1)

	if err := a.prescanSpecs(specsWrap); err != nil {
		return err
	}
	if err := a.prescanFunctions("", funcsWrap); err != nil {
		return err
	}

	if err := a.analyzeSpecs(specsWrap); err != nil {
		return err
	}
	return a.analyzeFunctions("", funcsWrap)
}

// checkPackageName enforces that every dot-separated segment of the
// package name starts with an upper-case letter, using golang.org/x/text's
// Unicode-aware case folding rather than a byte-range check so identifiers
// outside ASCII are judged correctly.
func (a *Analyzer) checkPackageName(name string) error {
	titler := cases.Upper(language.Und)
	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return gserr.New(gserr.SemanticInvalidPackageName, gserr.Position{}, "empty package name segment")
		}
		if !a.strictPackageNames {
			continue
		}
		_, size := utf8.DecodeRuneInString(segment)
		first := segment[:size]
		if titler.String(first) != first {
			return gserr.New(gserr.SemanticInvalidPackageName, gserr.Position{},
				"package name segment %q must start with an upper-case letter", segment)
		}
	}
	return nil
}

// --- prescan ---

func (a *Analyzer) prescanSpecs(specsWrap *ast.Node) error {
	for _, spec := range specsWrap.Children {
		if err := a.prescanSpec(spec); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) prescanSpec(spec *ast.Node) error {
	access := accessOf(spec.Child(0))
	typeNode := spec.Child(1)
	funcsWrap := spec.Child(2)
	propsWrap := spec.Child(3)

	name := typeNode.StringVal
	if typeNode.ChildCount() > 0 {
		params, err := genericParams(typeNode)
		if err != nil {
			return err
		}
		tmpl := &symbols.Symbol{
			Kind:          symbols.KindGenericType,
			Name:          symbols.MangleGenericTemplate(name, len(params)),
			Format:        symbols.FormatPointer,
			Access:        access,
			GenericParams: params,
			Applied:       false,
		}
		if err := a.table.PutBottom(tmpl.Name, tmpl); err != nil {
			return gserr.Wrap(gserr.SemanticDuplicateSpec, spec.Pos, err, "duplicate spec %q", name)
		}
		// Member bodies are type-checked once, against an erased "self"
		// type rather than once per instantiation (this compiler performs
		// no generic monomorphization; see DESIGN.md).
		self := &symbols.Symbol{Kind: symbols.KindType, Name: name, Format: symbols.FormatPointer, SizeBytes: 8, Access: access}
		if err := a.table.PutBottom(name, self); err != nil {
			return gserr.Wrap(gserr.SemanticDuplicateSpec, spec.Pos, err, "duplicate spec %q", name)
		}
	} else {
		sym := &symbols.Symbol{Kind: symbols.KindType, Name: name, Format: symbols.FormatPointer, SizeBytes: 8, Access: access}
		if err := a.table.PutBottom(name, sym); err != nil {
			return gserr.Wrap(gserr.SemanticDuplicateSpec, spec.Pos, err, "duplicate spec %q", name)
		}
	}

	if err := a.prescanFunctions(name, funcsWrap); err != nil {
		return err
	}
	return a.prescanProperties(name, propsWrap)
}

// genericParams turns a spec's type_expr's nested type children into
// placeholder type-parameter symbols, checking for duplicate names.
func genericParams(typeNode *ast.Node) ([]*symbols.Symbol, error) {
	seen := map[string]bool{}
	params := make([]*symbols.Symbol, 0, typeNode.ChildCount())
	for _, child := range typeNode.Children {
		if seen[child.StringVal] {
			return nil, gserr.New(gserr.SemanticDuplicateGenericParameter, child.Pos,
				"duplicate generic parameter %q", child.StringVal)
		}
		seen[child.StringVal] = true
		params = append(params, &symbols.Symbol{Kind: symbols.KindType, Name: child.StringVal, Format: symbols.FormatAny})
	}
	return params, nil
}

func (a *Analyzer) prescanFunctions(specName string, funcsWrap *ast.Node) error {
	for _, fn := range funcsWrap.Children {
		if err := a.prescanFunction(specName, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) prescanFunction(specName string, fn *ast.Node) error {
	access := accessOf(fn.Child(0))
	native := fn.Child(1).BoolVal
	retTypeNode := fn.Child(2)
	name := fn.Child(3).StringVal
	paramsNode := fn.Child(4)

	retType, err := a.lookupType(retTypeNode)
	if err != nil {
		return err
	}

	paramTypes := make([]*symbols.Symbol, 0, paramsNode.ChildCount())
	argTypeNames := make([]string, 0, paramsNode.ChildCount())
	seenParams := map[string]bool{}
	for _, param := range paramsNode.Children {
		pt, err := a.lookupType(param.Child(0))
		if err != nil {
			return err
		}
		if pt.Format == symbols.FormatVoid {
			return gserr.New(gserr.SemanticVoidInParameter, param.Pos, "parameter %q cannot be void", param.Child(1).StringVal)
		}
		pname := param.Child(1).StringVal
		if seenParams[pname] {
			return gserr.New(gserr.SemanticDuplicateParameter, param.Pos, "duplicate parameter %q", pname)
		}
		seenParams[pname] = true
		paramTypes = append(paramTypes, pt)
		argTypeNames = append(argTypeNames, pt.Name)
	}

	sym := &symbols.Symbol{
		Kind:       symbols.KindFunction,
		Name:       symbols.MangleFunction(specName, name, argTypeNames),
		Access:     access,
		Native:     native,
		SpecName:   specName,
		ParamTypes: paramTypes,
		ReturnType: retType,
		Role:       symbols.RoleFunction,
	}
	if err := a.table.PutBottom(sym.Name, sym); err != nil {
		return gserr.Wrap(gserr.SemanticDuplicateFunction, fn.Pos, err, "duplicate function %q", name)
	}
	return nil
}

func (a *Analyzer) prescanProperties(specName string, propsWrap *ast.Node) error {
	seen := map[string]bool{}
	for _, prop := range propsWrap.Children {
		typeNode := prop.Child(0)
		name := prop.Child(1).StringVal
		if seen[name] {
			return gserr.New(gserr.SemanticDuplicateProperty, prop.Pos, "duplicate property %q", name)
		}
		seen[name] = true

		propType, err := a.lookupType(typeNode)
		if err != nil {
			return err
		}

		if getter := prop.Child(2); getter != nil {
			sym := &symbols.Symbol{
				Kind: symbols.KindFunction, Name: symbols.MangleGetter(specName, name),
				Access: accessOf(getter.Child(0)), SpecName: specName, ReturnType: propType, Role: symbols.RolePropertyGetter,
			}
			if err := a.table.PutBottom(sym.Name, sym); err != nil {
				return gserr.Wrap(gserr.SemanticDuplicateProperty, prop.Pos, err, "duplicate getter for %q", name)
			}
		}
		if setter := prop.Child(3); setter != nil {
			sym := &symbols.Symbol{
				Kind: symbols.KindFunction, Name: symbols.MangleSetter(specName, name),
				Access: accessOf(setter.Child(0)), SpecName: specName,
				ParamTypes: []*symbols.Symbol{propType}, ReturnType: symbols.Void, Role: symbols.RolePropertySetter,
			}
			if err := a.table.PutBottom(sym.Name, sym); err != nil {
				return gserr.Wrap(gserr.SemanticDuplicateProperty, prop.Pos, err, "duplicate setter for %q", name)
			}
		}
	}
	return nil
}

func accessOf(n *ast.Node) symbols.AccessModifier {
	switch n.SymVal {
	case lexer.SymPublic:
		return symbols.AccessPublic
	case lexer.SymInternal:
		return symbols.AccessInternal
	default:
		return symbols.AccessConcealed
	}
}

// lookupType resolves a "type" node to its Symbol, handling generic
// applications by materializing (and caching) an applied-generic symbol
// the first time a given base+args combination is seen.
func (a *Analyzer) lookupType(typeNode *ast.Node) (*symbols.Symbol, error) {
	name := typeNode.StringVal
	if typeNode.ChildCount() == 0 {
		sym, ok := a.table.Get(name)
		if !ok {
			return nil, gserr.New(gserr.SemanticUndefinedType, typeNode.Pos, "undefined type %q", name)
		}
		return sym, nil
	}

	argNames := make([]string, 0, typeNode.ChildCount())
	for _, child := range typeNode.Children {
		argType, err := a.lookupType(child)
		if err != nil {
			return nil, err
		}
		argNames = append(argNames, argType.Name)
	}

	applied := symbols.MangleGenericApplied(name, argNames)
	if sym, ok := a.table.Get(applied); ok {
		return sym, nil
	}

	tmplKey := symbols.MangleGenericTemplate(name, len(argNames))
	tmpl, ok := a.table.Get(tmplKey)
	if !ok || tmpl.Kind != symbols.KindGenericType {
		return nil, gserr.New(gserr.SemanticUndefinedType, typeNode.Pos, "undefined generic type %q with %d argument(s)", name, len(argNames))
	}

	sym := &symbols.Symbol{Kind: symbols.KindType, Name: applied, Format: symbols.FormatPointer, SizeBytes: 8, Access: tmpl.Access}
	_ = a.table.PutBottom(applied, sym)
	return sym, nil
}
