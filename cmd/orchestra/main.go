package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/orchestra/internal/logger"
)

func main() {
	level := "info"
	if hasVerboseFlag(os.Args[1:]) {
		level = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: term.IsTerminal(int(os.Stdout.Fd())),
		Writer:        os.Stderr,
		Component:     "orchestra",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "orchestra: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	app := newAppContext(log)
	rootCmd := newRootCmd(app)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// hasVerboseFlag scans raw args for -v/--verbose before cobra parses them,
// since the logger must exist before newRootCmd builds the command tree.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
