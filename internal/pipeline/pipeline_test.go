package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/genaitools/testgen/internal/prompt"
	"github.com/genaitools/testgen/internal/storage"
	"github.com/genaitools/testgen/pkg/types"
)

// fakeGenerator returns a canned response, optionally failing for prompts
// that contain failOn.
type fakeGenerator struct {
	mu       sync.Mutex
	calls    []string
	response string
	failOn   string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, systemMessage, prompt string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, prompt)
	g.mu.Unlock()

	if g.failOn != "" && strings.Contains(prompt, g.failOn) {
		return "", g.err
	}
	return g.response, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

const calcSource = `from flask import Flask, jsonify, request

app = Flask(__name__)


@app.route("/add")
def add():
    """Add two numbers from query params."""
    a = int(request.args.get("a", 0))
    b = int(request.args.get("b", 0))
    return jsonify(result=a + b)


@app.route("/subtract")
def subtract():
    """Subtract b from a."""
    a = int(request.args.get("a", 0))
    b = int(request.args.get("b", 0))
    return jsonify(result=a - b)
`

const utilSource = `from flask import jsonify


@app.route("/shout")
def shout():
    """Uppercase the message query param."""
    return jsonify(message=request.args["message"].upper())
`

func setupRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return root
}

func flaskDetection() types.DetectionResult {
	return types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkFlask}
}

func TestGenerateTestsWritesFiles(t *testing.T) {
	root := setupRepo(t, map[string]string{
		"calc.py": calcSource,
		"util.py": utilSource,
	})

	gen := &fakeGenerator{response: "```python\ndef test_add():\n    assert add(1, 2) == 3\n```"}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen}

	report, err := p.GenerateTests(context.Background(), root, "https://github.com/example/calc", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if report.FilesScanned != 2 {
		t.Errorf("Expected 2 files scanned, got %d", report.FilesScanned)
	}
	if len(report.Written) != 2 {
		t.Fatalf("Expected 2 tests written, got %d (skipped: %v)", len(report.Written), report.Skipped)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("Expected no skips, got %v", report.Skipped)
	}
	if report.Interrupted {
		t.Error("Run should not be interrupted")
	}

	for _, rel := range report.Written {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("Written test missing: %v", err)
		}
		if !strings.Contains(string(data), "def test_add():") {
			t.Errorf("Test body missing from %s", rel)
		}
	}

	// Flask scaffolding lands once per run.
	if len(report.Scaffolding) != 1 || report.Scaffolding[0] != filepath.Join("tests", "conftest.py") {
		t.Errorf("Expected conftest.py scaffolding, got %v", report.Scaffolding)
	}
}

func TestGenerationFailureIsIsolated(t *testing.T) {
	root := setupRepo(t, map[string]string{
		"calc.py": calcSource,
		"bad.py":  utilSource,
	})

	gen := &fakeGenerator{
		response: "```python\ndef test_ok():\n    assert True\n```",
		failOn:   "bad.py",
		err:      errors.New("model unavailable"),
	}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen}

	report, err := p.GenerateTests(context.Background(), root, "", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if len(report.Written) != 1 {
		t.Errorf("Expected 1 test written despite the failure, got %d", len(report.Written))
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("Expected 1 skip, got %d", len(report.Skipped))
	}
	skip := report.Skipped[0]
	if skip.Kind != KindGenerationError {
		t.Errorf("Expected generation_error, got %s", skip.Kind)
	}
	if skip.Path != "bad.py" {
		t.Errorf("Expected bad.py skipped, got %s", skip.Path)
	}
}

func TestGenerationTimeoutIsClassified(t *testing.T) {
	root := setupRepo(t, map[string]string{"calc.py": calcSource})

	gen := &fakeGenerator{failOn: "calc.py", err: context.DeadlineExceeded}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen}

	report, err := p.GenerateTests(context.Background(), root, "", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if len(report.Skipped) != 1 {
		t.Fatalf("Expected 1 skip, got %d", len(report.Skipped))
	}
	if report.Skipped[0].Kind != KindGenerationTimeout {
		t.Errorf("Expected generation_timeout, got %s", report.Skipped[0].Kind)
	}
}

func TestUnusableResponseIsSkipped(t *testing.T) {
	root := setupRepo(t, map[string]string{"calc.py": calcSource})

	gen := &fakeGenerator{response: "Could you please provide the function code you would like tested?"}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen}

	report, err := p.GenerateTests(context.Background(), root, "", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if len(report.Written) != 0 {
		t.Errorf("Expected nothing written, got %v", report.Written)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Kind != KindGenerationError {
		t.Errorf("Expected one generation_error skip, got %v", report.Skipped)
	}
}

func TestUnsupportedLanguageAbortsRun(t *testing.T) {
	root := setupRepo(t, map[string]string{"main.rb": "def hello\n  puts 'hi'\nend\n"})

	p := &Pipeline{Store: prompt.NewStore(), Gen: &fakeGenerator{}}
	det := types.DetectionResult{Language: types.LangUnknown, Framework: types.FrameworkGeneral}

	_, err := p.GenerateTests(context.Background(), root, "", det)
	if err == nil {
		t.Fatal("Expected error for unsupported language")
	}
	if !errors.Is(err, prompt.ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestWorkerPoolProcessesAllFiles(t *testing.T) {
	files := map[string]string{
		"calc.py":       calcSource,
		"util.py":       utilSource,
		"lib/text.py":   utilSource,
		"lib/math2.py":  calcSource,
		"svc/orders.py": calcSource,
	}
	root := setupRepo(t, files)

	gen := &fakeGenerator{response: "```python\ndef test_pool():\n    assert True\n```"}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen, Workers: 3}

	report, err := p.GenerateTests(context.Background(), root, "", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if len(report.Written) != len(files) {
		t.Errorf("Expected %d tests written, got %d", len(files), len(report.Written))
	}
	if gen.callCount() != len(files) {
		t.Errorf("Expected %d generation calls, got %d", len(files), gen.callCount())
	}
}

func TestCancelledContextMarksInterrupted(t *testing.T) {
	root := setupRepo(t, map[string]string{"calc.py": calcSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{response: "```python\ndef test_x():\n    assert True\n```"}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen}

	report, err := p.GenerateTests(ctx, root, "", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	if !report.Interrupted {
		t.Error("Expected interrupted report for cancelled context")
	}
	if len(report.Written) != 0 {
		t.Errorf("Expected no files processed after cancellation, got %v", report.Written)
	}
}

func TestRunIsRecordedInLedger(t *testing.T) {
	root := setupRepo(t, map[string]string{"calc.py": calcSource})

	ledger, err := storage.OpenLedger(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer ledger.Close()

	gen := &fakeGenerator{response: "```python\ndef test_ledger():\n    assert True\n```"}
	p := &Pipeline{Store: prompt.NewStore(), Gen: gen, Ledger: ledger}

	report, err := p.GenerateTests(context.Background(), root, "https://github.com/example/calc", flaskDetection())
	if err != nil {
		t.Fatalf("GenerateTests failed: %v", err)
	}

	runs, err := ledger.ListRuns(5)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].ID != report.RunID {
		t.Errorf("Run ID mismatch: %s vs %s", runs[0].ID, report.RunID)
	}
	if runs[0].TestsWritten != 1 || runs[0].Status != "completed" {
		t.Errorf("Unexpected run record: %+v", runs[0])
	}

	recorded, err := ledger.ListGeneratedFiles(report.RunID)
	if err != nil {
		t.Fatalf("ListGeneratedFiles failed: %v", err)
	}
	if len(recorded) != 1 || recorded[0].SourcePath != "calc.py" {
		t.Errorf("Unexpected generated file records: %+v", recorded)
	}
}
