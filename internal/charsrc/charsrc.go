// Package charsrc provides the character-source abstraction consumed by the
// Lexer: a single-character peek/advance stream with an out-of-band
// end-of-input sentinel, plus string- and file-backed implementations.
package charsrc

import (
	"bufio"
	"fmt"
	"io"
)

// EOF is the sentinel returned by Peek and Advance once the source is
// exhausted. It is out-of-band from the single-byte alphabet Gunderscript
// source text is drawn from.
const EOF rune = -1

// Source streams characters one at a time. Implementations must make Peek a
// constant-time operation.
type Source interface {
	// HasNext reports whether at least one more character remains.
	HasNext() bool

	// Peek returns the current character without consuming it, or EOF if
	// the source is exhausted.
	Peek() rune

	// Advance returns the current character and moves the source forward by
	// one, or returns EOF if the source was already exhausted.
	Advance() rune
}

// StringSource is a Source backed by an in-memory string. It is the source
// used for string-literal compiles and in tests.
type StringSource struct {
	input []byte
	index int
}

// NewStringSource creates a StringSource over the given source text.
func NewStringSource(input string) *StringSource {
	return &StringSource{input: []byte(input)}
}

// HasNext implements Source.
func (s *StringSource) HasNext() bool {
	return s.index < len(s.input)
}

// Peek implements Source.
func (s *StringSource) Peek() rune {
	if !s.HasNext() {
		return EOF
	}
	return rune(s.input[s.index])
}

// Advance implements Source.
func (s *StringSource) Advance() rune {
	if !s.HasNext() {
		return EOF
	}
	c := rune(s.input[s.index])
	s.index++
	return c
}

// FileSource is a Source backed by an io.Reader, pre-reading one byte at a
// time so that Peek stays constant time. A read failure on the first byte
// is returned by NewFileSource, wrapped with "read-error"; a later one ends
// the stream (HasNext reports false) and is kept, unwrapped, for Err.
type FileSource struct {
	r       *bufio.Reader
	next    rune
	hasNext bool
	err     error
}

// NewFileSource wraps r in a FileSource, reading the first byte immediately
// so Peek is ready to use.
func NewFileSource(r io.Reader) (*FileSource, error) {
	fs := &FileSource{r: bufio.NewReader(r)}
	fs.fill()
	if fs.err != nil && fs.err != io.EOF {
		return nil, fmt.Errorf("read-error: %w", fs.err)
	}
	return fs, nil
}

func (fs *FileSource) fill() {
	b, err := fs.r.ReadByte()
	if err != nil {
		fs.hasNext = false
		if err != io.EOF {
			fs.err = err
		}
		return
	}
	fs.next = rune(b)
	fs.hasNext = true
}

// HasNext implements Source.
func (fs *FileSource) HasNext() bool {
	return fs.hasNext
}

// Peek implements Source.
func (fs *FileSource) Peek() rune {
	if !fs.hasNext {
		return EOF
	}
	return fs.next
}

// Advance implements Source.
func (fs *FileSource) Advance() rune {
	if !fs.hasNext {
		return EOF
	}
	c := fs.next
	fs.fill()
	return c
}

// Err returns the first read error encountered while pre-reading, if any.
// Callers that need to distinguish "clean EOF" from "I/O failure mid-stream"
// should check this after HasNext becomes false.
func (fs *FileSource) Err() error {
	return fs.err
}
