package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/pkg/types"
)

// Result is the outcome of one test-runner invocation. ExitCode is the
// subprocess exit code, surfaced unmodified.
type Result struct {
	ExitCode int
	Output   string
	Coverage string
	TimedOut bool
}

// Runner is the test-execution capability, substituted with a fake in
// pipeline tests.
type Runner interface {
	Run(ctx context.Context, repoPath string) (*Result, error)
}

// ErrNoRunner is returned when no test command exists for a language.
var ErrNoRunner = errors.New("no test runner for language")

// CommandFor maps a detected language to its external test command.
func CommandFor(language types.Language) ([]string, error) {
	switch language {
	case types.LangPython:
		return []string{
			"python", "-m", "pytest",
			"--cov=.",
			"--cov-report=term-missing",
			"-v",
			"--tb=short",
			"tests/",
		}, nil
	case types.LangTypeScript:
		return []string{"npx", "ng", "test", "--watch=false", "--browsers=ChromeHeadless"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoRunner, language)
	}
}

// SubprocessRunner invokes the language's test command in the repository
// directory, bounded by a timeout.
type SubprocessRunner struct {
	Language types.Language
	Timeout  time.Duration
}

func (r *SubprocessRunner) Run(ctx context.Context, repoPath string) (*Result, error) {
	argv, err := CommandFor(r.Language)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	logrus.WithField("command", strings.Join(argv, " ")).Info("Running tests")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = repoPath
	output, err := cmd.CombinedOutput()

	result := &Result{
		Output:   string(output),
		Coverage: ParseCoverage(string(output)),
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Command could not be started at all (runner not installed)
		return nil, err
	}

	return result, nil
}

// ParseCoverage extracts the total coverage percentage from pytest-cov
// terminal output ("TOTAL    120   12   90%"). Empty when absent.
func ParseCoverage(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "TOTAL") || !strings.Contains(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			return fields[len(fields)-1]
		}
	}
	return ""
}
