package charsrc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/charsrc"
)

func TestStringSource_PeekDoesNotConsume(t *testing.T) {
	s := charsrc.NewStringSource("ab")
	assert.Equal(t, 'a', s.Peek())
	assert.Equal(t, 'a', s.Peek())
	assert.Equal(t, 'a', s.Advance())
	assert.Equal(t, 'b', s.Peek())
}

func TestStringSource_ExhaustionReturnsEOF(t *testing.T) {
	s := charsrc.NewStringSource("a")
	assert.True(t, s.HasNext())
	assert.Equal(t, 'a', s.Advance())
	assert.False(t, s.HasNext())
	assert.Equal(t, charsrc.EOF, s.Peek())
	assert.Equal(t, charsrc.EOF, s.Advance())
}

func TestStringSource_EmptyInput(t *testing.T) {
	s := charsrc.NewStringSource("")
	assert.False(t, s.HasNext())
	assert.Equal(t, charsrc.EOF, s.Peek())
}

func TestFileSource_MatchesStringSourceBehavior(t *testing.T) {
	fs, err := charsrc.NewFileSource(strings.NewReader("xy"))
	require.NoError(t, err)

	assert.True(t, fs.HasNext())
	assert.Equal(t, 'x', fs.Peek())
	assert.Equal(t, 'x', fs.Advance())
	assert.Equal(t, 'y', fs.Advance())
	assert.False(t, fs.HasNext())
	assert.Equal(t, charsrc.EOF, fs.Advance())
}

func TestFileSource_EmptyReader(t *testing.T) {
	fs, err := charsrc.NewFileSource(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, fs.HasNext())
	assert.Equal(t, charsrc.EOF, fs.Peek())
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errors.New("boom")
}

func TestFileSource_ConstructionSurfacesReadError(t *testing.T) {
	_, err := charsrc.NewFileSource(errReader{})
	assert.Error(t, err)
}
