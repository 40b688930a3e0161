package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/genaitools/testgen/pkg/types"
)

func TestCommandForPython(t *testing.T) {
	argv, err := CommandFor(types.LangPython)
	if err != nil {
		t.Fatalf("CommandFor failed: %v", err)
	}
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "pytest") {
		t.Errorf("Expected pytest command, got %s", joined)
	}
	if !strings.Contains(joined, "--cov=.") {
		t.Errorf("Expected coverage flag, got %s", joined)
	}
}

func TestCommandForTypeScript(t *testing.T) {
	argv, err := CommandFor(types.LangTypeScript)
	if err != nil {
		t.Fatalf("CommandFor failed: %v", err)
	}
	if argv[0] != "npx" || argv[2] != "test" {
		t.Errorf("Expected npx ng test command, got %v", argv)
	}
}

func TestCommandForUnknown(t *testing.T) {
	_, err := CommandFor(types.LangUnknown)
	if err == nil {
		t.Fatal("Expected error for unknown language")
	}
	if !errors.Is(err, ErrNoRunner) {
		t.Errorf("Expected ErrNoRunner, got %v", err)
	}
}

func TestParseCoverage(t *testing.T) {
	output := `---------- coverage: platform linux, python 3.12 ----------
Name      Stmts   Miss  Cover   Missing
---------------------------------------
app.py       40      4    90%   12-15
---------------------------------------
TOTAL        40      4    90%

==== 6 passed in 0.42s ====`

	if got := ParseCoverage(output); got != "90%" {
		t.Errorf("Expected coverage '90%%', got '%s'", got)
	}
}

func TestParseCoverageAbsent(t *testing.T) {
	if got := ParseCoverage("==== 3 passed in 0.10s ===="); got != "" {
		t.Errorf("Expected empty coverage, got '%s'", got)
	}
}
