package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genaitools/testgen/internal/detect"
	"github.com/genaitools/testgen/pkg/types"
)

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Show the detected language and framework for a checkout",
	Long: `Inspect a local checkout and report what the generator would detect.

Useful as a dry run before generate: if detection comes back wrong, pass
--framework to generate to override it.

Example:
  testgen detect .
  testgen detect ~/src/my-flask-app`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDetect,
}

func runDetect(cmd *cobra.Command, args []string) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	det, err := detect.Detect(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}

	fmt.Printf("  Language:   %s\n", det.Language)
	fmt.Printf("  Framework:  %s\n", det.Framework)

	if det.Language == types.LangUnknown {
		fmt.Println("")
		fmt.Println("No Python or TypeScript source found; generate would refuse this repository.")
		os.Exit(exitSetup)
	}
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
