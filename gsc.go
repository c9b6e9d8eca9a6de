// Package gsc is the façade over the Gunderscript compiler front end: it
// wires Character Source -> Lexer -> Parser -> Semantic Analyzer -> IR
// Generator into a single Compile call and owns the Module artifact that
// call produces, playing the same role tunascript.Interpreter plays over
// tunaq's own lex/parse/exec pipeline.
package gsc

import (
	"io"

	"github.com/gundermanc/gsc/internal/charsrc"
	"github.com/gundermanc/gsc/internal/config"
	"github.com/gundermanc/gsc/internal/irgen"
	"github.com/gundermanc/gsc/internal/lexer"
	"github.com/gundermanc/gsc/internal/parser"
	"github.com/gundermanc/gsc/internal/sema"
)

// Builder re-exports internal/irgen's back-end abstraction so that a caller
// wiring a JIT or other code generator needs only this package's import,
// not internal/irgen's directly.
type Builder = irgen.Builder

// Compiler drives a single source file through every front-end stage. The
// zero value is ready for use and enforces strict package-name casing; File
// is optional and only affects diagnostic text.
type Compiler struct {
	// File is the name reported in diagnostics. Optional.
	File string

	// RelaxPackageNames, when true, disables the analyzer's package-name
	// title-case check. Mirrors a false config.Config.StrictPackageNames;
	// named inverted from that field so the zero value keeps the stricter,
	// historical behavior.
	RelaxPackageNames bool
}

// NewCompiler returns a Compiler configured from cfg.
func NewCompiler(file string, cfg config.Config) *Compiler {
	return &Compiler{File: file, RelaxPackageNames: !cfg.StrictPackageNames}
}

// Compile lexes, parses, semantically analyzes, and IR-generates src
// against b, in that order, returning the resulting Module. Any stage's
// failure aborts the pipeline and returns its error (typically a
// *gserr.Error) without attempting later stages.
func (c *Compiler) Compile(src string, b Builder) (*Module, error) {
	return c.compile(charsrc.NewStringSource(src), b)
}

// CompileReader is the io.Reader-driven equivalent of Compile.
func (c *Compiler) CompileReader(r io.Reader, b Builder) (*Module, error) {
	fsrc, err := charsrc.NewFileSource(r)
	if err != nil {
		return nil, err
	}
	return c.compile(fsrc, b)
}

func (c *Compiler) compile(src charsrc.Source, b Builder) (*Module, error) {
	lx, err := lexer.New(src)
	if err != nil {
		return nil, err
	}

	p := parser.New(lx)
	module, err := p.ParseModule()
	if err != nil {
		return nil, err
	}

	an := sema.NewWithOptions(sema.Options{StrictPackageNames: !c.RelaxPackageNames})
	if err := an.Analyze(module); err != nil {
		return nil, err
	}

	gen := irgen.New(an.Table(), b)
	funcs, err := gen.Generate(module)
	if err != nil {
		return nil, err
	}

	return newModule(module, an.Table(), funcs), nil
}
