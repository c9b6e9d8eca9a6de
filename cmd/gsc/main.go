/*
Gsc compiles a single Gunderscript source file front-end-only: lexing,
parsing, semantic analysis, and IR generation against a text dump of the
generated IR, since no concrete JIT back-end ships with this repo.

Usage:

	gsc [flags] FILE

The flags are:

	-v, --version
		Print the current version and exit.

	-o, --output FILE
		Write the compiled Module artifact (see package gsc) to FILE instead
		of printing the IR dump to stdout.

	-c, --config FILE
		Load configuration overrides from FILE (TOML). Defaults to
		"gsc.toml" in the current directory; a missing file is not an error.

	-r, --repl
		Launch an interactive prompt that compiles one snippet at a time.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gundermanc/gsc"
	"github.com/gundermanc/gsc/internal/config"
	"github.com/gundermanc/gsc/internal/irgen"
	"github.com/gundermanc/gsc/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates a user source file failed to compile.
	ExitCompileError

	// ExitInitError indicates an issue reading the source, config, or
	// writing the output artifact.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagOutput  = pflag.StringP("output", "o", "", "Write the compiled Module artifact to this path instead of printing an IR dump")
	flagConfig  = pflag.StringP("config", "c", "gsc.toml", "Path to a TOML configuration file")
	flagREPL    = pflag.BoolP("repl", "r", false, "Launch an interactive compile-one-snippet-at-a-time prompt")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	if *flagREPL {
		runREPL(cfg)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: expected exactly one source file argument")
		returnCode = ExitInitError
		return
	}

	if err := compileFile(args[0], *flagOutput, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}
}

func compileFile(path, outputPath string, cfg config.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	c := gsc.NewCompiler(path, cfg)
	b := irgen.NewTextBuilder()
	m, err := c.CompileReader(f, b)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, m.Marshal(), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", outputPath, err)
		}
		return nil
	}

	for _, line := range b.Lines {
		fmt.Println(line)
	}
	return nil
}
