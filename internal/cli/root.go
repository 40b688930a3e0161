package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genaitools/testgen/internal/config"
	"github.com/genaitools/testgen/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "testgen",
	Short: "AI test generation for Python and TypeScript repositories",
	Long: `TestGen - Generate unit tests for an entire repository

TestGen clones a repository, figures out its language and web framework,
extracts the testable functions, and asks an AI model to write unit tests
for them. Generated tests land where the ecosystem expects them (tests/
for pytest, *.spec.ts next to the source for Angular), and can be run and
committed in the same invocation.

Supported stacks:
  - Python: Flask, Django, FastAPI, or plain modules (pytest)
  - TypeScript: Angular (Karma/Jasmine)

Quick Start:
  testgen generate --repo https://github.com/you/project
  testgen detect .              Show what would be detected
  testgen runs                  List previous runs`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnv()
		logging.Init(cfg)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
