package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genaitools/testgen/internal/storage"
)

var (
	runsLimit int
	runsFiles string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List previous generation runs",
	Long: `Show the run ledger: what was generated, for which repository, and how
the test run went.

Example:
  testgen runs
  testgen runs --limit 5
  testgen runs --files <run-id>    List the test files one run wrote`,
	Run: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) {
	ledger, err := storage.OpenLedger(storage.DefaultLedgerPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}
	defer ledger.Close()

	if runsFiles != "" {
		files, err := ledger.ListGeneratedFiles(runsFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Println("No files recorded for that run.")
			return
		}
		for _, f := range files {
			fmt.Printf("  %s  <- %s  (%d function(s))\n", f.TestPath, f.SourcePath, f.Functions)
		}
		return
	}

	runs, err := ledger.ListRuns(runsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	for _, run := range runs {
		coverage := run.Coverage
		if coverage == "" {
			coverage = "-"
		}
		fmt.Printf("%s  %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.RepoURL)
		fmt.Printf("  id: %s\n", run.ID)
		fmt.Printf("  %s/%s  scanned: %d  written: %d  skipped: %d  coverage: %s  [%s]\n",
			run.Language, run.Framework, run.FilesScanned, run.TestsWritten,
			run.FilesSkipped, coverage, run.Status)
	}
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to show")
	runsCmd.Flags().StringVar(&runsFiles, "files", "", "Show the files written by the given run ID")
	rootCmd.AddCommand(runsCmd)
}
