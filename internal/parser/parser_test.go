package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/charsrc"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/parser"
)

func parseSource(t *testing.T, src string) (*ast.Node, error) {
	t.Helper()
	lx, err := lexer.New(charsrc.NewStringSource(src))
	require.NoError(t, err)
	return parser.New(lx).ParseModule()
}

func TestParseModule_MinimalModuleShape(t *testing.T) {
	module, err := parseSource(t, `package "Sample";`)
	require.NoError(t, err)

	require.Equal(t, ast.RuleModule, module.Rule)
	require.GreaterOrEqual(t, module.ChildCount(), 3)
	assert.Equal(t, ast.RuleName, module.Child(0).Rule)
	assert.Equal(t, "Sample", module.Child(0).StringVal)

	last := module.ChildCount() - 1
	assert.Equal(t, ast.RuleFunctions, module.Child(last).Rule)
	assert.Equal(t, ast.RuleSpecs, module.Child(last-1).Rule)
}

func TestParseModule_DependsClausesBetweenNameAndBody(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
depends "Other";
depends "Third";
`)
	require.NoError(t, err)

	assert.Equal(t, ast.RuleDepends, module.Child(1).Rule)
	assert.Equal(t, "Other", module.Child(1).StringVal)
	assert.Equal(t, ast.RuleDepends, module.Child(2).Rule)
	assert.Equal(t, "Third", module.Child(2).StringVal)
}

func TestParseModule_FunctionGoesInFunctionsWrap(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public int32 add(int32 a, int32 b) {
return a + b;
}
`)
	require.NoError(t, err)

	funcs := module.Child(module.ChildCount() - 1)
	require.Equal(t, 1, funcs.ChildCount())

	fn := funcs.Child(0)
	assert.Equal(t, ast.RuleFunction, fn.Rule)
	assert.Equal(t, "add", fn.Child(3).StringVal)
	assert.Equal(t, 2, fn.Child(4).ChildCount(), "add should have 2 parameters")
}

func TestParseModule_SpecGoesInSpecsWrap(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public spec Vector {
int32 x {
public get;
public set;
}
}
`)
	require.NoError(t, err)

	specs := module.Child(module.ChildCount() - 2)
	require.Equal(t, 1, specs.ChildCount())
	assert.Equal(t, ast.RuleSpec, specs.Child(0).Rule)
}

func TestParseModule_MissingPackageKeywordFails(t *testing.T) {
	_, err := parseSource(t, `"Sample";`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserMissingPackage, code)
}

func TestParseModule_BadPackageNameFails(t *testing.T) {
	_, err := parseSource(t, `package ".Foo";`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserBadPackageName, code)
}

func TestParseModule_MissingSemicolonFails(t *testing.T) {
	_, err := parseSource(t, `package "Sample"
public int32 broken() { return 0; }
`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserExpectedSemicolon, code)
}

func TestParseModule_FunctionMissingAccessModifierFails(t *testing.T) {
	_, err := parseSource(t, `package "Sample";
int32 add(int32 a, int32 b) { return a + b; }
`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserUnexpectedToken, code)
}

func TestParseModule_NativeFunctionRequiresSemicolonBody(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public native int32 syscall(int32 n);
`)
	require.NoError(t, err)

	funcs := module.Child(module.ChildCount() - 1)
	fn := funcs.Child(0)
	assert.True(t, fn.Child(1).BoolVal, "native flag should be set")
	assert.Equal(t, 0, fn.Child(5).ChildCount(), "native function body should be empty")
}

func TestParseModule_ConstructorDesugarsToReservedName(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public spec Vector {
public construct() { }
}
`)
	require.NoError(t, err)

	specs := module.Child(module.ChildCount() - 2)
	spec := specs.Child(0)
	ctorFuncs := spec.Child(2)
	require.Equal(t, 1, ctorFuncs.ChildCount())
	ctor := ctorFuncs.Child(0)
	assert.Equal(t, "$construct", ctor.Child(3).StringVal)
	assert.Equal(t, "void", ctor.Child(2).StringVal)
}

func TestParseModule_GenericTypeExprParsesNestedParams(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public Pair<int32,bool> make() { }
`)
	require.NoError(t, err)

	funcs := module.Child(module.ChildCount() - 1)
	fn := funcs.Child(0)
	typeNode := fn.Child(2)
	assert.Equal(t, "Pair", typeNode.StringVal)
	require.Equal(t, 2, typeNode.ChildCount())
	assert.Equal(t, "int32", typeNode.Child(0).StringVal)
	assert.Equal(t, "bool", typeNode.Child(1).StringVal)
}

func TestParseModule_BareExpressionStatementFails(t *testing.T) {
	_, err := parseSource(t, `package "Sample";
public int32 f() {
3 + 4;
}
`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserIncompleteNameStatement, code)
}

func TestParseModule_WhileDesugarsToForWithEmptyInitAndUpdate(t *testing.T) {
	module, err := parseSource(t, `package "Sample";
public int32 f() {
while (true) { }
}
`)
	require.NoError(t, err)

	funcs := module.Child(module.ChildCount() - 1)
	body := funcs.Child(0).Child(5)
	require.Equal(t, 1, body.ChildCount())

	loop := body.Child(0)
	assert.Equal(t, ast.RuleFor, loop.Rule)
	assert.Equal(t, 0, loop.Child(0).ChildCount(), "while has no init clause")
	assert.Equal(t, 0, loop.Child(2).ChildCount(), "while has no update clause")
	assert.Equal(t, 1, loop.Child(1).ChildCount(), "while's condition should be present")
}

func TestParseModule_UnterminatedBlockFails(t *testing.T) {
	_, err := parseSource(t, `package "Sample";
public int32 f() {
`)
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.ParserUnexpectedEOF, code)
}
