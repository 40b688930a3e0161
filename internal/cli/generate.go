package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/genaitools/testgen/internal/config"
	"github.com/genaitools/testgen/internal/detect"
	"github.com/genaitools/testgen/internal/gitops"
	"github.com/genaitools/testgen/internal/llm"
	"github.com/genaitools/testgen/internal/pipeline"
	"github.com/genaitools/testgen/internal/prompt"
	"github.com/genaitools/testgen/internal/runner"
	"github.com/genaitools/testgen/internal/storage"
	"github.com/genaitools/testgen/pkg/types"
)

// Exit codes beyond the usual 0/1: setup problems (bad config, clone or
// detection failure) exit 2, a run that produced no tests exits 3, and when
// the test runner executes its exit code is passed through.
const (
	exitSetup   = 2
	exitNoTests = 3
)

var (
	generateRepo      string
	generateTarget    string
	generateBranch    string
	generateTestsBr   string
	generateFramework string
	generateMessage   string
	generateWorkers   int
	generateRunTests  bool
	generateCommit    bool
	generatePush      bool
	generateCleanup   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Clone a repository and generate tests for it",
	Long: `Clone a repository, detect its language and framework, and generate
unit tests for every testable function with an AI model.

Python tests go under tests/ (with a conftest.py for the detected
framework); Angular specs go next to their source files. Generated tests
are committed on a branch; pass --push to publish it.

Requires OPENAI_API_KEY in the environment.

Examples:
  testgen generate --repo https://github.com/you/flask-app
  testgen generate --repo git@github.com:you/api.git --run-tests --push
  testgen generate --repo https://github.com/you/app --framework django`,
	Run: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg := config.FromEnv()
	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "Error: %s\n", p)
		}
		os.Exit(exitSetup)
	}

	// Ctrl-C cancels in-flight generation; tests already written stay on
	// disk and the run is recorded as interrupted.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()

	gen, err := llm.NewOpenAIGenerator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}

	fmt.Printf("Cloning %s...\n", generateRepo)
	repoPath, err := gitops.Clone(ctx, generateRepo, generateTarget, generateBranch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}
	if generateCleanup {
		defer gitops.Cleanup(repoPath)
	}

	det, err := detect.Detect(repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: detection failed: %v\n", err)
		os.Exit(exitSetup)
	}
	if generateFramework != "" {
		det.Framework = types.ParseFramework(generateFramework)
	}
	if det.Language == types.LangUnknown {
		fmt.Fprintln(os.Stderr, "Error: no Python or TypeScript source found in repository")
		os.Exit(exitSetup)
	}
	fmt.Printf("Detected: %s / %s\n", det.Language, det.Framework)

	ledger, err := storage.OpenLedger(storage.DefaultLedgerPath())
	if err != nil {
		logrus.WithError(err).Warn("Run ledger unavailable, continuing without it")
		ledger = nil
	} else {
		defer ledger.Close()
	}

	p := &pipeline.Pipeline{
		Store:   prompt.NewStore(),
		Gen:     gen,
		Ledger:  ledger,
		Workers: generateWorkers,
	}

	report, err := p.GenerateTests(ctx, repoPath, generateRepo, det)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}

	printReport(report)

	if len(report.Written) == 0 {
		fmt.Println("No tests were generated.")
		os.Exit(exitNoTests)
	}

	runnerExit := 0
	if generateRunTests && !report.Interrupted {
		runnerExit = runGeneratedTests(ctx, p, report, repoPath, cfg, started)
	}

	if generateCommit && !report.Interrupted {
		if err := commitTests(repoPath, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitSetup)
		}
	}

	if report.Interrupted {
		fmt.Println("Interrupted; generated tests were left in place.")
	}
	os.Exit(runnerExit)
}

func printReport(report *pipeline.Report) {
	fmt.Println("")
	fmt.Printf("  Files scanned:   %d\n", report.FilesScanned)
	fmt.Printf("  Tests written:   %d\n", len(report.Written))
	fmt.Printf("  Files skipped:   %d\n", len(report.Skipped))
	for _, skip := range report.Skipped {
		fmt.Printf("    %s (%s)\n", skip.Path, skip.Kind)
	}
	fmt.Println("")
}

// runGeneratedTests executes the language's test command and returns the
// exit code to pass through. Timeouts and missing runners do not abort the
// commit step.
func runGeneratedTests(ctx context.Context, p *pipeline.Pipeline, report *pipeline.Report, repoPath string, cfg *config.Config, started time.Time) int {
	r := &runner.SubprocessRunner{Language: report.Detection.Language, Timeout: cfg.TestTimeout}

	result, err := r.Run(ctx, repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not run tests: %v\n", err)
		return 0
	}

	fmt.Println(result.Output)
	if result.TimedOut {
		fmt.Fprintf(os.Stderr, "Warning: test run timed out after %s\n", cfg.TestTimeout)
	}
	if result.Coverage != "" {
		fmt.Printf("  Coverage:        %s\n", result.Coverage)
	}

	p.RecordRunnerResult(report, repoPath, generateRepo, result.ExitCode, result.Coverage, started)
	return result.ExitCode
}

// commitTests stages everything the run produced and commits it on a
// dedicated test branch (test-generation-<source-branch> unless overridden).
func commitTests(repoPath string, report *pipeline.Report) error {
	branch := generateTestsBr
	if branch == "" {
		current, err := gitops.CurrentBranch(repoPath)
		if err != nil {
			return err
		}
		branch = "test-generation-" + current
	}
	if err := gitops.CreateBranch(repoPath, branch); err != nil {
		return err
	}

	files := append([]string{}, report.Scaffolding...)
	files = append(files, report.Written...)
	if err := gitops.Stage(repoPath, files); err != nil {
		return err
	}
	if err := gitops.Commit(repoPath, generateMessage); err != nil {
		return err
	}
	fmt.Printf("Committed %d test file(s) on %s.\n", len(report.Written), branch)

	if generatePush {
		if err := gitops.Push(repoPath, branch); err != nil {
			return err
		}
		fmt.Printf("Pushed branch %s to origin.\n", branch)
	}
	return nil
}

func init() {
	generateCmd.Flags().StringVar(&generateRepo, "repo", "", "Repository URL to clone (required)")
	generateCmd.Flags().StringVar(&generateTarget, "target-dir", "", "Clone into this directory instead of a temp dir")
	generateCmd.Flags().StringVar(&generateBranch, "branch", "", "Branch to clone")
	generateCmd.Flags().StringVar(&generateTestsBr, "test-branch", "", "Branch to commit generated tests on (default test-generation-<branch>)")
	generateCmd.Flags().StringVar(&generateFramework, "framework", "", "Override framework detection (flask, django, fastapi, angular)")
	generateCmd.Flags().StringVar(&generateMessage, "commit-message", "Add AI-generated unit tests", "Commit message for generated tests")
	generateCmd.Flags().IntVar(&generateWorkers, "workers", 1, "Concurrent generation requests")
	generateCmd.Flags().BoolVar(&generateRunTests, "run-tests", false, "Run the test suite after generating")
	generateCmd.Flags().BoolVar(&generateCommit, "commit", true, "Commit generated tests")
	generateCmd.Flags().BoolVar(&generatePush, "push", false, "Push the test branch to origin")
	generateCmd.Flags().BoolVar(&generateCleanup, "cleanup", false, "Remove the clone when done")
	generateCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(generateCmd)
}
