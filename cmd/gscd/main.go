/*
Gscd is a compile-as-a-service daemon for Gunderscript source: it runs the
same lex/parse/sema/irgen pipeline as cmd/gsc behind an HTTP API, recording
every compile request to a sqlite-backed log.

Usage:

	gscd [flags]

The flags are:

	-c, --config FILE
		Load configuration from FILE (TOML). Defaults to "gscd.toml" in the
		current directory; a missing file is not an error.

Routes, all under /api/v1:

	POST /auth
		Exchange an API key (Authorization: Bearer <key>) for a short-lived
		session token.

	POST /compile
		Requires a session token. Body is {"source": "..."}; responds with
		the compiled Module and its IR text dump, or a compile error.

	GET /compiles/{id}
		Requires a session token. Retrieves a previously recorded compile
		log entry by id.
*/
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/gundermanc/gsc/cmd/gscd/compilelog"
	"github.com/gundermanc/gsc/internal/config"
)

var flagConfig = pflag.StringP("config", "c", "gscd.toml", "Path to a TOML configuration file")

func main() {
	pflag.Parse()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	logDB, err := compilelog.Open(cfg.Daemon.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
	defer logDB.Close()

	d := &daemon{cfg: cfg, log: logDB}

	log.Printf("gscd listening on %s", cfg.Daemon.ListenAddr)
	if err := http.ListenAndServe(cfg.Daemon.ListenAddr, d.newRouter()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}
