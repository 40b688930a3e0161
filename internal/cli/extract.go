package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genaitools/testgen/internal/detect"
	"github.com/genaitools/testgen/internal/extract"
	"github.com/genaitools/testgen/pkg/types"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "List the functions that would get tests generated",
	Long: `Extract the testable functions from a local checkout without calling
the model. Shows exactly what generate would build prompts for.

Example:
  testgen extract .
  testgen extract ~/src/api --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	det, err := detect.Detect(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}
	if det.Language == types.LangUnknown {
		fmt.Fprintln(os.Stderr, "Error: no Python or TypeScript source found")
		os.Exit(exitSetup)
	}

	files, err := extract.ExtractRepo(path, det)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}

	if extractJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(files); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	total := 0
	for _, ff := range files {
		fmt.Printf("%s\n", ff.FilePath)
		for _, fn := range ff.Functions {
			marker := ""
			if fn.IsAsync {
				marker = " (async)"
			}
			fmt.Printf("  %s:%d  %s%s\n", ff.FilePath, fn.Line, fn.Name, marker)
		}
		total += len(ff.Functions)
	}
	fmt.Printf("\n%d function(s) in %d file(s)\n", total, len(files))
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(extractCmd)
}
