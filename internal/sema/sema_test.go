package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/charsrc"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/parser"
	"github.com/gundermanc/gsc/internal/sema"
)

func analyzeSource(t *testing.T, src string) (*sema.Analyzer, error) {
	t.Helper()
	lx, err := lexer.New(charsrc.NewStringSource(src))
	require.NoError(t, err)
	module, err := parser.New(lx).ParseModule()
	require.NoError(t, err)

	a := sema.New()
	return a, a.Analyze(module)
}

func requireCode(t *testing.T, err error, want gserr.Code) {
	t.Helper()
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, want, code)
}

func TestAnalyze_MinimalModuleSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";`)
	assert.NoError(t, err)
}

func TestAnalyze_PackageNameMustStartUpperCase(t *testing.T) {
	_, err := analyzeSource(t, `package "sample";`)
	requireCode(t, err, gserr.SemanticInvalidPackageName)
}

func TestAnalyze_DottedPackageNameChecksEverySegment(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample.other";`)
	requireCode(t, err, gserr.SemanticInvalidPackageName)
}

func TestAnalyze_PackageNameAcceptsMultiByteUpperCaseLetter(t *testing.T) {
	_, err := analyzeSource(t, `package "Émile";`)
	assert.NoError(t, err)
}

func TestAnalyze_PackageNameRejectsMultiByteLowerCaseLetter(t *testing.T) {
	_, err := analyzeSource(t, `package "émile";`)
	requireCode(t, err, gserr.SemanticInvalidPackageName)
}

func TestAnalyze_RelaxedPackageNamesAcceptsLowerCase(t *testing.T) {
	lx, err := lexer.New(charsrc.NewStringSource(`package "sample";`))
	require.NoError(t, err)
	module, err := parser.New(lx).ParseModule()
	require.NoError(t, err)

	a := sema.NewWithOptions(sema.Options{StrictPackageNames: false})
	assert.NoError(t, a.Analyze(module))
}

func TestAnalyze_DuplicateFunctionOverloadFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 add(int32 a, int32 b) { return a; }
public int32 add(int32 a, int32 b) { return b; }
`)
	requireCode(t, err, gserr.SemanticDuplicateFunction)
}

func TestAnalyze_OverloadsOnDifferentParamTypesCoexist(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 add(int32 a, int32 b) { return a; }
public float32 add(float32 a, float32 b) { return a; }
`)
	assert.NoError(t, err)
}

func TestAnalyze_UndefinedParamTypeFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f(Bogus x) { return 0; }
`)
	requireCode(t, err, gserr.SemanticUndefinedType)
}

func TestAnalyze_UndefinedVariableFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return y; }
`)
	requireCode(t, err, gserr.SemanticUndefinedVariable)
}

func TestAnalyze_DuplicateParameterFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f(int32 a, int32 a) { return a; }
`)
	requireCode(t, err, gserr.SemanticDuplicateParameter)
}

func TestAnalyze_AssignDeclaresNewLocalFromRHSType(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() {
x <- 3;
return x;
}
`)
	assert.NoError(t, err)
}

func TestAnalyze_ReassignWithMismatchedTypeFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() {
x <- 3;
x <- true;
return x;
}
`)
	requireCode(t, err, gserr.SemanticTypeMismatchInAssign)
}

func TestAnalyze_AssignToThisFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
public int32 f() {
this <- 3;
return 0;
}
}
`)
	requireCode(t, err, gserr.SemanticThisAssigned)
}

func TestAnalyze_ReturnTypeMismatchFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return true; }
`)
	requireCode(t, err, gserr.SemanticReturnTypeMismatch)
}

func TestAnalyze_MissingReturnValueInNonVoidFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return; }
`)
	requireCode(t, err, gserr.SemanticReturnTypeMismatch)
}

func TestAnalyze_ReturnValueInVoidFunctionFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public void f() { return 0; }
`)
	requireCode(t, err, gserr.SemanticReturnInVoid)
}

func TestAnalyze_IfConditionMustBeBoolFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() {
if (3) { return 0; }
return 1;
}
`)
	requireCode(t, err, gserr.SemanticNonBoolIfCondition)
}

func TestAnalyze_LoopConditionMustBeBoolFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() {
while (0) { }
return 1;
}
`)
	requireCode(t, err, gserr.SemanticNonBoolLoopCondition)
}

func TestAnalyze_CallWithNoMatchingOverloadFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return missing(); }
`)
	requireCode(t, err, gserr.SemanticFunctionOverloadNotFound)
}

func TestAnalyze_NonNumericOperandsInArithmeticFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return true - false; }
`)
	requireCode(t, err, gserr.SemanticNonNumericOperands)
}

func TestAnalyze_MismatchedOperandTypesInAddFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return 3 + 3.5; }
`)
	requireCode(t, err, gserr.SemanticUnmatchingTypeInOp)
}

func TestAnalyze_NonBoolOperandsInLogicalOpFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public bool f() { return 3 && true; }
`)
	requireCode(t, err, gserr.SemanticNonBoolOperands)
}

func TestAnalyze_ComparingMismatchedTypesFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public bool f() { return 3 == true; }
`)
	requireCode(t, err, gserr.SemanticUnmatchingTypeInOp)
}

func TestAnalyze_DuplicateSpecFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector { }
public spec Vector { }
`)
	requireCode(t, err, gserr.SemanticDuplicateSpec)
}

func TestAnalyze_DuplicatePropertyFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
public get;
}
int32 x {
public get;
}
}
`)
	requireCode(t, err, gserr.SemanticDuplicateProperty)
}

func TestAnalyze_PropertyGetterAndSetterRegisteredUnderMangledNames(t *testing.T) {
	a, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
public get;
public set;
}
}
`)
	require.NoError(t, err)

	getter, ok := a.Table().Get("Vector<-x")
	require.True(t, ok)
	assert.Equal(t, "int32", getter.ReturnType.Name)

	setter, ok := a.Table().Get("Vector->x")
	require.True(t, ok)
	require.Len(t, setter.ParamTypes, 1)
	assert.Equal(t, "int32", setter.ParamTypes[0].Name)
	assert.True(t, setter.ReturnType.IsVoid())
}

func TestAnalyze_ReturnFromPropertySetterFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
public get;
public set {
return 3;
}
}
}
`)
	requireCode(t, err, gserr.SemanticReturnFromPropertySet)
}

func TestAnalyze_UserSuppliedGetterBodyMustReturnPropertyType(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
public get {
return true;
}
}
}
`)
	requireCode(t, err, gserr.SemanticReturnTypeMismatch)
}

func TestAnalyze_PropertyAccessFromOutsideSpecRequiresPublicAccess(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
concealed get;
}
}
public int32 f(Vector v) { return v.x; }
`)
	requireCode(t, err, gserr.SemanticNotAccessible)
}

func TestAnalyze_PropertyAccessFromOutsideSpecSucceedsWhenPublic(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
int32 x {
public get;
}
}
public int32 f(Vector v) { return v.x; }
`)
	assert.NoError(t, err)
}

func TestAnalyze_DuplicateGenericParameterFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Pair<T,T> { }
`)
	requireCode(t, err, gserr.SemanticDuplicateGenericParameter)
}

func TestAnalyze_ConstructorOverloadNotFoundFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector { }
public Vector f() { return new Vector(1); }
`)
	requireCode(t, err, gserr.SemanticConstructorOverloadNotFound)
}

func TestAnalyze_ConstructorCallSucceedsWhenMatched(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public spec Vector {
public construct(int32 x) { }
}
public Vector f() { return new Vector(1); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_VoidParameterFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f(void x) { return 0; }
`)
	requireCode(t, err, gserr.SemanticVoidInParameter)
}

func TestAnalyze_StringConcatenationYieldsString(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public string f() { return "a" + "b"; }
`)
	assert.NoError(t, err)
}

func TestAnalyze_StringPlusIntStillFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public string f() { return "a" + 3; }
`)
	requireCode(t, err, gserr.SemanticInvalidTypeInAdd)
}

func TestAnalyze_NumericCastToFloatSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public float32 f() { return float32(3); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_BoolCastToFloatSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public float32 f() { return float32(true); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_IntCastToBoolSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public bool f() { return bool(1); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_CharCastToBoolSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public bool f() { return bool('a'); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_FloatCastToIntSucceeds(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return int32(3.5); }
`)
	assert.NoError(t, err)
}

func TestAnalyze_FloatCastToBoolFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public bool f() { return bool(3.5); }
`)
	requireCode(t, err, gserr.SemanticUnsupportedTypecast)
}

func TestAnalyze_CastToNonPrimitiveTargetFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public string f() { return string(3); }
`)
	requireCode(t, err, gserr.SemanticUnsupportedTypecast)
}

func TestAnalyze_CastWithWrongArgumentCountFails(t *testing.T) {
	_, err := analyzeSource(t, `package "Sample";
public int32 f() { return int32(1, 2); }
`)
	requireCode(t, err, gserr.SemanticFunctionOverloadNotFound)
}

func TestAnalyze_CastAnnotatesCallNodeWithTargetType(t *testing.T) {
	lx, err := lexer.New(charsrc.NewStringSource(`package "Sample";
public int32 f() { return int32(3.5); }
`))
	require.NoError(t, err)
	module, err := parser.New(lx).ParseModule()
	require.NoError(t, err)

	a := sema.New()
	require.NoError(t, a.Analyze(module))

	funcs := module.Child(module.ChildCount() - 1)
	block := funcs.Child(0).Child(5)
	castCall := block.Child(0).Child(0)
	require.Equal(t, "int32", castCall.Symbol().Name)
}
