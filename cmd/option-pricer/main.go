package main

import (
	"os"

	"github.com/contactkeval/option-pricer/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		logger.Errorf("option-pricer: %v", err)
		return 1
	}
	return 0
}
