package irgen

import "github.com/gundermanc/gsc/internal/symbols"

type propEntry struct {
	Offset int
	Type   *symbols.Symbol
}

// TypeSizeTable holds each spec's total instance size and each of its
// properties' byte offset within that instance, computed once in a
// dedicated prescan pass (before any property get/set can be lowered) and
// keyed by mangled spec name.
type TypeSizeTable struct {
	sizes map[string]int
	props map[string]map[string]propEntry
}

func NewTypeSizeTable() *TypeSizeTable {
	return &TypeSizeTable{sizes: map[string]int{}, props: map[string]map[string]propEntry{}}
}

func (t *TypeSizeTable) SetSize(specName string, sizeBytes int) {
	t.sizes[specName] = sizeBytes
}

func (t *TypeSizeTable) Size(specName string) int {
	return t.sizes[specName]
}

func (t *TypeSizeTable) SetProp(specName, propName string, offset int, typ *symbols.Symbol) {
	m, ok := t.props[specName]
	if !ok {
		m = map[string]propEntry{}
		t.props[specName] = m
	}
	m[propName] = propEntry{Offset: offset, Type: typ}
}

func (t *TypeSizeTable) Prop(specName, propName string) (offset int, typ *symbols.Symbol, ok bool) {
	m, ok := t.props[specName]
	if !ok {
		return 0, nil, false
	}
	e, ok := m[propName]
	return e.Offset, e.Type, ok
}
