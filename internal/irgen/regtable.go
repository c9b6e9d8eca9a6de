package irgen

import "github.com/gundermanc/gsc/internal/symbols"

// RegEntry is the register table's value: the runtime analog of a
// semantic Symbol, pairing a type with where its value lives. Direct
// entries (bound only for "this") hold the value itself in Base, with no
// memory indirection; all other entries hold a base pointer plus a byte
// offset that must be loaded/stored through.
type RegEntry struct {
	Type   *symbols.Symbol
	Base   Reg
	Offset int
	Direct bool
}

// RegTable is a stack of scoped name-to-RegEntry frames, the same shape as
// symbols.Table (see its doc comment): used uniformly for local variables
// (base = stack alloc, offset 0), function parameters (base = argument
// buffer, offset = cumulative arg size), and `this` (bound Direct, since
// the self pointer is already a materialized register rather than a
// memory cell holding one).
type RegTable struct {
	frames []map[string]RegEntry
}

// NewRegTable creates a RegTable with a single bottom frame pushed.
func NewRegTable() *RegTable {
	t := &RegTable{}
	t.Push()
	return t
}

func (t *RegTable) Push() {
	t.frames = append(t.frames, map[string]RegEntry{})
}

func (t *RegTable) Pop() {
	if len(t.frames) == 0 {
		panic("irgen: Pop called on empty RegTable")
	}
	t.frames = t.frames[:len(t.frames)-1]
}

func (t *RegTable) Depth() int {
	return len(t.frames)
}

func (t *RegTable) Put(name string, entry RegEntry) {
	t.frames[len(t.frames)-1][name] = entry
}

func (t *RegTable) Get(name string) (RegEntry, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if e, ok := t.frames[i][name]; ok {
			return e, true
		}
	}
	return RegEntry{}, false
}

func (t *RegTable) GetTopOnly(name string) (RegEntry, bool) {
	e, ok := t.frames[len(t.frames)-1][name]
	return e, ok
}

// GetFrame searches only the frame `depth` levels below the top (0 = top),
// letting assignment lowering distinguish "exists in current frame" from
// "exists in an outer frame" exactly as the semantic analyzer's scoping
// rule does.
func (t *RegTable) GetFrame(depth int, name string) (RegEntry, bool) {
	idx := len(t.frames) - 1 - depth
	if idx < 0 || idx >= len(t.frames) {
		return RegEntry{}, false
	}
	e, ok := t.frames[idx][name]
	return e, ok
}
