package gsc

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/rezi"

	"github.com/gundermanc/gsc/internal/ast"
	"github.com/gundermanc/gsc/internal/irgen"
	"github.com/gundermanc/gsc/internal/symbols"
)

var (
	_ encoding.BinaryMarshaler   = (*Module)(nil)
	_ encoding.BinaryUnmarshaler = (*Module)(nil)
)

// Module is a compiled Gunderscript source file: the package name, the
// public (exported) function/constructor/accessor signatures a dependent
// module would need to call into it, and the function-pointer-table shape
// the IR generator assigned. It is the artifact a successful Compiler.Compile
// call returns.
type Module struct {
	Compiled    bool   `json:"compiled"`
	PackageName string `json:"packageName"`

	// Exports holds one record per publicly accessible function, spec
	// member function, constructor, or property accessor.
	Exports []ExportedSymbol `json:"exports"`

	// FuncNames is the module function-pointer table, in slot-index order,
	// mangled names matching Exports' MangledName where public.
	FuncNames []string `json:"funcNames"`
}

// ExportedSymbol is one publicly accessible callable recorded in a Module.
type ExportedSymbol struct {
	MangledName string   `json:"mangledName"`
	SpecName    string   `json:"specName"`
	ParamTypes  []string `json:"paramTypes"`
	ReturnType  string   `json:"returnType"`
}

func newModule(module *ast.Node, table *symbols.Table, funcs *irgen.FuncTable) *Module {
	m := &Module{
		Compiled:    true,
		PackageName: module.Child(0).StringVal,
		FuncNames:   funcs.Names(),
	}

	for _, name := range m.FuncNames {
		sym, ok := table.Get(name)
		if !ok || sym.Access != symbols.AccessPublic {
			continue
		}
		m.Exports = append(m.Exports, exportedSymbolOf(sym))
	}

	return m
}

func exportedSymbolOf(sym *symbols.Symbol) ExportedSymbol {
	paramTypes := make([]string, len(sym.ParamTypes))
	for i, p := range sym.ParamTypes {
		paramTypes[i] = p.Name
	}
	ret := ""
	if sym.ReturnType != nil {
		ret = sym.ReturnType.Name
	}
	return ExportedSymbol{
		MangledName: sym.Name,
		SpecName:    sym.SpecName,
		ParamTypes:  paramTypes,
		ReturnType:  ret,
	}
}

// Marshal serializes m to a compact binary artifact suitable for writing to
// a .gsmod cache file, via the same REZI length-prefixed encoding the pack's
// sqlite DAO uses to persist a *game.State onto a session row.
func (m *Module) Marshal() []byte {
	return rezi.EncBinary(m)
}

// Unmarshal decodes a .gsmod artifact previously produced by Marshal into m,
// replacing its contents. It returns an error if data is truncated or
// malformed, and does not modify m in that case.
func (m *Module) Unmarshal(data []byte) error {
	var fresh Module
	n, err := rezi.DecBinary(data, &fresh)
	if err != nil {
		return fmt.Errorf("REZI decode: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("decoded byte count mismatch; only consumed %d/%d bytes", n, len(data))
	}
	*m = fresh
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Module) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encBinaryBool(m.Compiled)...)
	data = append(data, encBinaryString(m.PackageName)...)

	data = append(data, encBinaryInt(len(m.FuncNames))...)
	for _, name := range m.FuncNames {
		data = append(data, encBinaryString(name)...)
	}

	data = append(data, encBinaryInt(len(m.Exports))...)
	for _, exp := range m.Exports {
		data = append(data, encBinary(exp)...)
	}

	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Module) UnmarshalBinary(data []byte) error {
	var err error
	var read int

	m.Compiled, read, err = decBinaryBool(data)
	if err != nil {
		return fmt.Errorf("decoding Compiled: %w", err)
	}
	data = data[read:]

	m.PackageName, read, err = decBinaryString(data)
	if err != nil {
		return fmt.Errorf("decoding PackageName: %w", err)
	}
	data = data[read:]

	var funcCount int
	funcCount, read, err = decBinaryInt(data)
	if err != nil {
		return fmt.Errorf("decoding FuncNames count: %w", err)
	}
	data = data[read:]

	m.FuncNames = nil
	for i := 0; i < funcCount; i++ {
		var name string
		name, read, err = decBinaryString(data)
		if err != nil {
			return fmt.Errorf("decoding FuncNames[%d]: %w", i, err)
		}
		data = data[read:]
		m.FuncNames = append(m.FuncNames, name)
	}

	var expCount int
	expCount, read, err = decBinaryInt(data)
	if err != nil {
		return fmt.Errorf("decoding Exports count: %w", err)
	}
	data = data[read:]

	m.Exports = nil
	for i := 0; i < expCount; i++ {
		var exp ExportedSymbol
		read, err = decBinary(data, &exp)
		if err != nil {
			return fmt.Errorf("decoding Exports[%d]: %w", i, err)
		}
		data = data[read:]
		m.Exports = append(m.Exports, exp)
	}

	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e ExportedSymbol) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encBinaryString(e.MangledName)...)
	data = append(data, encBinaryString(e.SpecName)...)

	data = append(data, encBinaryInt(len(e.ParamTypes))...)
	for _, t := range e.ParamTypes {
		data = append(data, encBinaryString(t)...)
	}

	data = append(data, encBinaryString(e.ReturnType)...)

	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *ExportedSymbol) UnmarshalBinary(data []byte) error {
	var err error
	var read int

	e.MangledName, read, err = decBinaryString(data)
	if err != nil {
		return err
	}
	data = data[read:]

	e.SpecName, read, err = decBinaryString(data)
	if err != nil {
		return err
	}
	data = data[read:]

	var paramCount int
	paramCount, read, err = decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[read:]

	e.ParamTypes = nil
	for i := 0; i < paramCount; i++ {
		var t string
		t, read, err = decBinaryString(data)
		if err != nil {
			return err
		}
		data = data[read:]
		e.ParamTypes = append(e.ParamTypes, t)
	}

	e.ReturnType, _, err = decBinaryString(data)
	if err != nil {
		return err
	}

	return nil
}

// The helpers below are a length-prefixed binary encoding for the primitive
// shapes Module/ExportedSymbol are built from, the same convention
// internal/tunascript/binary.go uses for its own AST binary format.

func encBinaryBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func encBinaryInt(i int) []byte {
	enc := make([]byte, 0, 8)
	enc = binary.AppendVarint(enc, int64(i))
	for len(enc) < 8 {
		enc = append(enc, 0)
	}
	return enc
}

func encBinaryString(s string) []byte {
	enc := make([]byte, 0, len(s))
	chCount := 0
	for _, ch := range s {
		chBuf := make([]byte, utf8.UTFMax)
		byteLen := utf8.EncodeRune(chBuf, ch)
		enc = append(enc, chBuf[:byteLen]...)
		chCount++
	}
	return append(encBinaryInt(chCount), enc...)
}

func encBinary(b encoding.BinaryMarshaler) []byte {
	enc, _ := b.MarshalBinary()
	return append(encBinaryInt(len(enc)), enc...)
}

func decBinaryBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("unexpected end of data")
	}
	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("unknown non-bool value")
	}
}

func decBinaryInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("data does not contain 8 bytes")
	}
	val, read := binary.Varint(data[:8])
	if read == 0 {
		return 0, 0, fmt.Errorf("input buffer too small, should never happen")
	} else if read < 0 {
		return 0, 0, fmt.Errorf("input buffer contains value larger than 64 bits, should never happen")
	}
	return int(val), 8, nil
}

func decBinaryString(data []byte) (string, int, error) {
	runeCount, read, err := decBinaryInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding string rune count: %w", err)
	}
	data = data[read:]

	if runeCount < 0 {
		return "", 0, fmt.Errorf("string rune count < 0")
	}

	readBytes := read
	var sb strings.Builder
	for i := 0; i < runeCount; i++ {
		ch, bytesRead := utf8.DecodeRune(data)
		if ch == utf8.RuneError {
			switch bytesRead {
			case 0:
				return "", 0, fmt.Errorf("unexpected end of data in string")
			case 1:
				return "", 0, fmt.Errorf("invalid UTF-8 encoding in string")
			default:
				return "", 0, fmt.Errorf("invalid unicode replacement character in rune")
			}
		}
		sb.WriteRune(ch)
		readBytes += bytesRead
		data = data[bytesRead:]
	}

	return sb.String(), readBytes, nil
}

func decBinary(data []byte, b encoding.BinaryUnmarshaler) (int, error) {
	byteLen, read, err := decBinaryInt(data)
	if err != nil {
		return 0, err
	}
	data = data[read:]

	if len(data) < byteLen {
		return 0, fmt.Errorf("unexpected end of data")
	}
	if err := b.UnmarshalBinary(data[:byteLen]); err != nil {
		return 0, err
	}

	return byteLen + read, nil
}
