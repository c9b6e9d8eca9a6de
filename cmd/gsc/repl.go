package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/gundermanc/gsc"
	"github.com/gundermanc/gsc/internal/config"
	"github.com/gundermanc/gsc/internal/irgen"
	"github.com/gundermanc/gsc/internal/version"
)

const replPrompt = "gsc> "

// runREPL launches an interactive prompt, grounded on the pack's own
// readline-backed command reader: each entered line is wrapped as the body
// of a throwaway module-level function, run through the full
// lex->parse->sema->irgen pipeline, and the resulting IR dump (or error) is
// printed before prompting again. "quit" or EOF ends the session.
func runREPL(cfg config.Config) {
	rl, err := readline.NewEx(&readline.Config{Prompt: replPrompt})
	if err != nil {
		fmt.Printf("ERROR: could not start readline: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer rl.Close()

	fmt.Printf("gsc %s interactive mode. Type a statement or \"quit\" to exit.\n", version.Current)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		} else if err == io.EOF {
			return
		} else if err != nil {
			fmt.Printf("ERROR: %s\n", err.Error())
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		runSnippet(line, cfg)
	}
}

func runSnippet(line string, cfg config.Config) {
	src := fmt.Sprintf("package \"Repl\";\npublic int32 __repl() {\n%s\n}\n", line)

	c := gsc.NewCompiler("<repl>", cfg)
	b := irgen.NewTextBuilder()
	_, err := c.Compile(src, b)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err.Error())
		return
	}

	for _, l := range b.Lines {
		fmt.Println(l)
	}
}
