// Command quillscope is the command-line front end of the lexical analysis
// engine.
package main

import (
	"os"

	"github.com/quillflow/QuillScope-Engine/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the failure before returning it, so exit quietly here.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
