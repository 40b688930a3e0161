package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genaitools/testgen/pkg/types"
)

func pyWriter(t *testing.T, fw types.Framework) *Writer {
	t.Helper()
	return New(t.TempDir(), types.DetectionResult{Language: types.LangPython, Framework: fw})
}

func TestTestPathPython(t *testing.T) {
	w := pyWriter(t, types.FrameworkGeneral)

	cases := []struct {
		source string
		want   string
	}{
		{"app.py", filepath.Join("tests", "test_app.py")},
		{filepath.Join("pkg", "handlers.py"), filepath.Join("tests", "pkg", "test_handlers.py")},
	}
	for _, c := range cases {
		if got := w.TestPath(c.source); got != c.want {
			t.Errorf("TestPath(%q) = %q, want %q", c.source, got, c.want)
		}
	}
}

func TestTestPathTypeScript(t *testing.T) {
	w := New(t.TempDir(), types.DetectionResult{Language: types.LangTypeScript, Framework: types.FrameworkAngular})

	got := w.TestPath(filepath.Join("src", "app", "user.component.ts"))
	want := filepath.Join("src", "app", "user.component.spec.ts")
	if got != want {
		t.Errorf("TestPath = %q, want %q", got, want)
	}
}

func TestWriteStructuresPythonTest(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkFlask})

	gen := &types.GeneratedTest{
		SourcePath: "app.py",
		Code:       "def test_index(client):\n    assert client.get('/').status_code == 200",
		Framework:  types.FrameworkFlask,
	}
	funcs := []types.Function{{Name: "index"}}

	rel, err := w.Write(gen, funcs)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "# Source file: app.py") {
		t.Error("Expected source file header")
	}
	if !strings.Contains(content, "import pytest") {
		t.Error("Expected pytest import")
	}
	if !strings.Contains(content, "from app import index") {
		t.Errorf("Expected named source import, got:\n%s", content)
	}
	if !strings.Contains(content, "def test_index(client):") {
		t.Error("Expected generated test body")
	}
}

func TestWriteModuleImportForManyFunctions(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkGeneral})

	funcs := make([]types.Function, 6)
	for i := range funcs {
		funcs[i] = types.Function{Name: "fn" + string(rune('a'+i))}
	}
	gen := &types.GeneratedTest{SourcePath: filepath.Join("pkg", "util.py"), Code: "def test_many(): pass"}

	rel, err := w.Write(gen, funcs)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, rel))
	if !strings.Contains(string(data), "import pkg.util") {
		t.Errorf("Expected module import for >5 functions, got:\n%s", string(data))
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkGeneral})

	gen := &types.GeneratedTest{SourcePath: "a.py", Code: "def test_first(): pass"}
	if _, err := w.Write(gen, nil); err != nil {
		t.Fatalf("First write failed: %v", err)
	}

	gen.Code = "def test_second(): pass"
	rel, err := w.Write(gen, nil)
	if err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(root, rel))
	if !strings.Contains(string(data), "test_second") || strings.Contains(string(data), "test_first") {
		t.Error("Second write should overwrite the first")
	}
}

func TestEnsureScaffoldingFlask(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkFlask})

	created, err := w.EnsureScaffolding()
	if err != nil {
		t.Fatalf("EnsureScaffolding failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Expected 1 created file, got %d", len(created))
	}

	data, err := os.ReadFile(filepath.Join(root, "tests", "conftest.py"))
	if err != nil {
		t.Fatalf("conftest.py not written: %v", err)
	}
	if !strings.Contains(string(data), "from app import app") {
		t.Error("Flask conftest should import the app")
	}
	if !strings.Contains(string(data), "def client():") {
		t.Error("Flask conftest should define a client fixture")
	}

	// Second call is a no-op
	created, err = w.EnsureScaffolding()
	if err != nil {
		t.Fatalf("Second EnsureScaffolding failed: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("Existing conftest should not be recreated, got %v", created)
	}
}

func TestEnsureScaffoldingDjangoAddsPytestIni(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangPython, Framework: types.FrameworkDjango})

	created, err := w.EnsureScaffolding()
	if err != nil {
		t.Fatalf("EnsureScaffolding failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Expected conftest.py and pytest.ini, got %v", created)
	}
	if _, err := os.Stat(filepath.Join(root, "pytest.ini")); err != nil {
		t.Error("pytest.ini should exist for django")
	}
}

func TestEnsureScaffoldingTypeScriptIsNoop(t *testing.T) {
	root := t.TempDir()
	w := New(root, types.DetectionResult{Language: types.LangTypeScript, Framework: types.FrameworkAngular})

	created, err := w.EnsureScaffolding()
	if err != nil {
		t.Fatalf("EnsureScaffolding failed: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("No scaffolding expected for TypeScript, got %v", created)
	}
}
