package irgen

// FuncTable is the module function-pointer table: a positional assignment
// of every function (module-level, spec member, constructor, declared
// property accessor) to a table slot, keyed by mangled name so the
// generator's emission pass can look up the same index its prescan pass
// assigned. The back-end fills the real slots with addresses after
// assembly; this package only tracks the index assignment.
type FuncTable struct {
	index []string
	slot  map[string]int
}

// NewFuncTable creates an empty table.
func NewFuncTable() *FuncTable {
	return &FuncTable{slot: map[string]int{}}
}

// Assign gives mangledName the next free slot if it doesn't already have
// one, and returns its index either way. Assignment order is the table's
// emission order, so callers must drive Assign in the exact order the
// emission pass will later visit the same functions.
func (t *FuncTable) Assign(mangledName string) int {
	if idx, ok := t.slot[mangledName]; ok {
		return idx
	}
	idx := len(t.index)
	t.slot[mangledName] = idx
	t.index = append(t.index, mangledName)
	return idx
}

// Index returns the slot previously assigned to mangledName.
func (t *FuncTable) Index(mangledName string) (int, bool) {
	idx, ok := t.slot[mangledName]
	return idx, ok
}

// Len is the total slot count: one slot per function, constructor and
// property accessor of any access level, so it equals len(Module.FuncNames).
// It does not equal len(Module.Exports), which lists only the public ones,
// when a module declares a non-public function.
func (t *FuncTable) Len() int {
	return len(t.index)
}

// Names returns the mangled names in slot-index order, so that a Module
// artifact can persist the function-pointer-table shape without exposing
// FuncTable's internal map.
func (t *FuncTable) Names() []string {
	out := make([]string, len(t.index))
	copy(out, t.index)
	return out
}
