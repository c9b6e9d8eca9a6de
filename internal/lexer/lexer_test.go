package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/internal/charsrc"
	"github.com/gundermanc/gsc/internal/gserr"
)

func tokenKinds(t *testing.T, input string) []Kind {
	t.Helper()
	lx, err := New(charsrc.NewStringSource(input))
	require.NoError(t, err)

	var kinds []Kind
	for lx.Current() != nil {
		kinds = append(kinds, lx.Current().Kind)
		_, err := lx.AdvanceNext()
		require.NoError(t, err)
	}
	return kinds
}

func TestLex_KindSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Kind
	}{
		{name: "empty", input: "", expect: nil},
		{name: "name", input: "foo", expect: []Kind{KindName}},
		{name: "int", input: "42", expect: []Kind{KindInt}},
		{name: "float", input: "4.2", expect: []Kind{KindFloat}},
		{name: "string", input: `"hi"`, expect: []Kind{KindString}},
		{name: "char", input: `'x'`, expect: []Kind{KindChar}},
		{name: "access modifier", input: "public", expect: []Kind{KindAccessModifier}},
		{name: "keyword", input: "return", expect: []Kind{KindKeyword}},
		{name: "punct run", input: "(){};", expect: []Kind{
			KindPunct, KindPunct, KindPunct, KindPunct, KindPunct,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tokenKinds(t, tc.input))
		})
	}
}

func TestLex_MaximalMunchOperators(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect Symbol
	}{
		{"less", "<", SymLess},
		{"less-equals", "<=", SymLessEquals},
		{"swap", "<->", SymSwap},
		{"assign", "<-", SymAssign},
		{"add", "+", SymAdd},
		{"add-equals", "+=", SymAddEquals},
		{"not", "!", SymLogNot},
		{"not-equals", "!=", SymNotEquals},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lx, err := New(charsrc.NewStringSource(tc.input))
			require.NoError(t, err)
			require.NotNil(t, lx.Current())
			assert.Equal(t, tc.expect, lx.Current().Sym)
		})
	}
}

func TestLex_StringEscapes(t *testing.T) {
	lx, err := New(charsrc.NewStringSource(`"a\nb\tc\"d"`))
	require.NoError(t, err)
	require.NotNil(t, lx.Current())
	assert.Equal(t, "a\nb\tc\"d", lx.Current().Str)
}

func TestLex_UnterminatedStringFails(t *testing.T) {
	_, err := New(charsrc.NewStringSource(`"abc`))
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerUnterminatedString, code)
}

func TestLex_NewlineInStringFails(t *testing.T) {
	_, err := New(charsrc.NewStringSource("\"abc\ndef\""))
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerNewlineInString, code)
}

func TestLex_UnterminatedBlockCommentFails(t *testing.T) {
	_, err := New(charsrc.NewStringSource("/* never closes"))
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerUnterminatedComment, code)
}

func TestLex_LineCommentSkippedEntirely(t *testing.T) {
	kinds := tokenKinds(t, "foo // a comment\nbar")
	assert.Equal(t, []Kind{KindName, KindName}, kinds)
}

func TestLex_BlockCommentSkippedEntirely(t *testing.T) {
	kinds := tokenKinds(t, "foo /* skip\nthis */ bar")
	assert.Equal(t, []Kind{KindName, KindName}, kinds)
}

func TestLex_SingleSlashIsDivide(t *testing.T) {
	lx, err := New(charsrc.NewStringSource("a / b"))
	require.NoError(t, err)
	require.NotNil(t, lx.Next())
	assert.Equal(t, SymDiv, lx.Next().Sym)
}

func TestLex_KeywordsNotLexedAsNames(t *testing.T) {
	lx, err := New(charsrc.NewStringSource("return"))
	require.NoError(t, err)
	require.NotNil(t, lx.Current())
	assert.Equal(t, KindKeyword, lx.Current().Kind)
	assert.Equal(t, SymReturn, lx.Current().Sym)
}

func TestLex_PrimitiveTypeNamesLexAsNames(t *testing.T) {
	for _, typeName := range []string{"int32", "int8", "float32", "bool", "string"} {
		lx, err := New(charsrc.NewStringSource(typeName))
		require.NoError(t, err)
		require.NotNil(t, lx.Current())
		assert.Equal(t, KindName, lx.Current().Kind, "type name %q should lex as KindName", typeName)
	}
}

func TestLex_IntegerOutOfRangeFails(t *testing.T) {
	_, err := New(charsrc.NewStringSource("99999999999"))
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerBadNumber, code)
}

func TestLex_UnrecognizedCharFails(t *testing.T) {
	_, err := New(charsrc.NewStringSource("$"))
	require.Error(t, err)
	code, ok := gserr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, gserr.LexerNoMatch, code)
}

func TestLex_PositionTracksLineAndColumn(t *testing.T) {
	lx, err := New(charsrc.NewStringSource("a\nbb"))
	require.NoError(t, err)
	require.NotNil(t, lx.Current())
	assert.Equal(t, 1, lx.Current().Line)
	assert.Equal(t, 1, lx.Current().Column)

	_, err = lx.AdvanceNext()
	require.NoError(t, err)
	require.NotNil(t, lx.Current())
	assert.Equal(t, 2, lx.Current().Line)
	assert.Equal(t, 1, lx.Current().Column)
}

func TestLex_TwoTokenLookahead(t *testing.T) {
	lx, err := New(charsrc.NewStringSource("a b c"))
	require.NoError(t, err)

	require.NotNil(t, lx.Current())
	require.NotNil(t, lx.Next())
	assert.Equal(t, "a", lx.Current().Name)
	assert.Equal(t, "b", lx.Next().Name)

	_, err = lx.AdvanceNext()
	require.NoError(t, err)
	assert.Equal(t, "b", lx.Current().Name)
	assert.Equal(t, "c", lx.Next().Name)

	_, err = lx.AdvanceNext()
	require.NoError(t, err)
	assert.Equal(t, "c", lx.Current().Name)
	assert.Nil(t, lx.Next())
}
