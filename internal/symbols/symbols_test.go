package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/symbols"
)

func TestTable_PutAndGetAcrossFrames(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.PutBottom("int32", symbols.Int32))

	tbl.Push()
	require.NoError(t, tbl.Put("x", &symbols.Symbol{Name: "x"}))

	sym, ok := tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, "x", sym.Name)

	// still visible from the bottom frame through the stack.
	sym, ok = tbl.Get("int32")
	require.True(t, ok)
	assert.Same(t, symbols.Int32, sym)

	tbl.Pop()
	_, ok = tbl.Get("x")
	assert.False(t, ok, "x should no longer be visible once its frame is popped")
}

func TestTable_PutDuplicateInSameFrameFails(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Put("x", &symbols.Symbol{Name: "x"}))

	err := tbl.Put("x", &symbols.Symbol{Name: "x"})
	require.Error(t, err)
	var dup *symbols.ErrDuplicate
	assert.ErrorAs(t, err, &dup)
}

func TestTable_ShadowingAcrossFrames(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Put("x", &symbols.Symbol{Name: "outer"}))

	tbl.Push()
	require.NoError(t, tbl.Put("x", &symbols.Symbol{Name: "inner"}))

	sym, ok := tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, "inner", sym.Name)

	_, ok = tbl.GetTopOnly("x")
	assert.True(t, ok)

	tbl.Pop()
	sym, ok = tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, "outer", sym.Name)
}

func TestTable_GetFrameByDepth(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Put("a", &symbols.Symbol{Name: "a"}))
	tbl.Push()
	require.NoError(t, tbl.Put("b", &symbols.Symbol{Name: "b"}))

	_, ok := tbl.GetFrame(0, "b")
	assert.True(t, ok)
	_, ok = tbl.GetFrame(0, "a")
	assert.False(t, ok)
	_, ok = tbl.GetFrame(1, "a")
	assert.True(t, ok)
	_, ok = tbl.GetFrame(5, "a")
	assert.False(t, ok)
}

func TestTable_PopOnEmptyPanics(t *testing.T) {
	tbl := &symbols.Table{}
	assert.Panics(t, func() { tbl.Pop() })
}

func TestSymbol_EqualsTreatsAnyTypeAsWildcard(t *testing.T) {
	assert.True(t, symbols.Int32.Equals(symbols.AnyType))
	assert.True(t, symbols.AnyType.Equals(symbols.Int32))
	assert.True(t, symbols.Int32.Equals(symbols.Int32))
	assert.False(t, symbols.Int32.Equals(symbols.Bool))
}

func TestSymbol_CloneIsIndependent(t *testing.T) {
	original := &symbols.Symbol{Name: "x"}
	clone := original.Clone()
	clone.Name = "y"
	assert.Equal(t, "x", original.Name)
}

func TestSymbol_TypeSymbolUnwrapsFunctionReturnType(t *testing.T) {
	fn := &symbols.Symbol{Kind: symbols.KindFunction, ReturnType: symbols.Int32}
	assert.Same(t, symbols.Int32, fn.TypeSymbol())
	assert.Same(t, symbols.Bool, symbols.Bool.TypeSymbol())
}

func TestSymbol_IsVoid(t *testing.T) {
	fn := &symbols.Symbol{Kind: symbols.KindFunction, ReturnType: symbols.Void}
	assert.True(t, fn.IsVoid())

	fn.ReturnType = symbols.Int32
	assert.False(t, fn.IsVoid())
}

func TestMangleFunction_JoinsSpecNameAndArgTypes(t *testing.T) {
	assert.Equal(t, "::add$int32$int32", symbols.MangleFunction("", "add", []string{"int32", "int32"}))
	assert.Equal(t, "Vector::add$Vector", symbols.MangleFunction("Vector", "add", []string{"Vector"}))
	assert.Equal(t, "::main", symbols.MangleFunction("", "main", nil))
}

func TestMangleGetterAndSetter(t *testing.T) {
	assert.Equal(t, "Vector<-x", symbols.MangleGetter("Vector", "x"))
	assert.Equal(t, "Vector->x", symbols.MangleSetter("Vector", "x"))
}

func TestMangleLocal(t *testing.T) {
	assert.Equal(t, "Local%%count", symbols.MangleLocal("count"))
}

func TestMangleGenericTemplateAndApplied(t *testing.T) {
	assert.Equal(t, "Pair~~~~", symbols.MangleGenericTemplate("Pair", 2))
	assert.Equal(t, "Pair<int32,bool>", symbols.MangleGenericApplied("Pair", []string{"int32", "bool"}))
}

func TestConstructorName_IsReservedAndUnreachableFromUserCode(t *testing.T) {
	assert.Equal(t, "$construct", symbols.ConstructorName())
}
