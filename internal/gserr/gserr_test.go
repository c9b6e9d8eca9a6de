package gserr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/gserr"
)

func TestPosition_StringFormatsLineColumn(t *testing.T) {
	assert.Equal(t, "3:7", gserr.Position{Line: 3, Column: 7}.String())
}

func TestError_ErrorIncludesCodeAndMessage(t *testing.T) {
	err := gserr.New(gserr.LexerBadNumber, gserr.Position{Line: 1, Column: 1}, "value %d out of range", 99)
	assert.Contains(t, err.Error(), "lexer-bad-number")
	assert.Contains(t, err.Error(), "value 99 out of range")
}

func TestError_WrapIncludesCauseInMessage(t *testing.T) {
	cause := errors.New("boom")
	err := gserr.Wrap(gserr.ParserUnexpectedEOF, gserr.Position{}, cause, "parse failed")
	assert.Contains(t, err.Error(), "boom")
	assert.Same(t, cause, err.Unwrap())
}

func TestError_IsMatchesOnCodeAlone(t *testing.T) {
	var err error = gserr.New(gserr.SemanticUndefinedType, gserr.Position{Line: 5}, "undefined type %q", "Foo")
	sentinel := gserr.New(gserr.SemanticUndefinedType, gserr.Position{}, "")
	assert.True(t, errors.Is(err, sentinel))

	other := gserr.New(gserr.SemanticUndefinedVariable, gserr.Position{}, "")
	assert.False(t, errors.Is(err, other))
}

func TestCodeOf_ExtractsCodeFromWrappedError(t *testing.T) {
	inner := gserr.New(gserr.LexerNoMatch, gserr.Position{Line: 2, Column: 4}, "bad char")
	wrapped := errors.New("context: " + inner.Error())

	_, ok := gserr.CodeOf(wrapped)
	assert.False(t, ok, "CodeOf must not match a plain error whose text merely mentions a code")

	code, ok := gserr.CodeOf(inner)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerNoMatch, code)

	code, ok = gserr.CodeOf(fmtErrorf(inner))
	require.True(t, ok, "CodeOf should see through a %%w-wrapped *Error")
	assert.Equal(t, gserr.LexerNoMatch, code)
}

func fmtErrorf(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestCode_StringFallsBackForUnknownCode(t *testing.T) {
	assert.Equal(t, "code(9999)", gserr.Code(9999).String())
}

func TestCode_StringGivesCanonicalNames(t *testing.T) {
	assert.Equal(t, "lexer-bad-number", gserr.LexerBadNumber.String())
	assert.Equal(t, "semantic-duplicate-function", gserr.SemanticDuplicateFunction.String())
}
