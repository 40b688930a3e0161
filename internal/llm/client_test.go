package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/genaitools/testgen/pkg/types"
)

func TestCleanResponseStripsPythonFence(t *testing.T) {
	raw := "Here you go:\n```python\ndef test_add():\n    assert add(1, 2) == 3\n```\nHope that helps!"

	code, ok := CleanResponse(raw)
	if !ok {
		t.Fatal("Expected a usable response")
	}
	if strings.Contains(code, "```") {
		t.Errorf("Fences should be stripped, got: %s", code)
	}
	if !strings.Contains(code, "def test_add():") {
		t.Errorf("Expected test code, got: %s", code)
	}
	if strings.Contains(code, "Hope that helps") {
		t.Errorf("Trailing prose should be stripped, got: %s", code)
	}
}

func TestCleanResponseBareFence(t *testing.T) {
	raw := "```\nassert True\n```"
	code, ok := CleanResponse(raw)
	if !ok || code != "assert True" {
		t.Errorf("Expected 'assert True', got '%s' (ok=%v)", code, ok)
	}
}

func TestCleanResponseNoFence(t *testing.T) {
	raw := "def test_x():\n    assert x() == 1"
	code, ok := CleanResponse(raw)
	if !ok || code != raw {
		t.Errorf("Unfenced code should pass through, got '%s' (ok=%v)", code, ok)
	}
}

func TestCleanResponseRejectsRefusal(t *testing.T) {
	raw := "Could you please provide the function code so I can write tests?"
	if _, ok := CleanResponse(raw); ok {
		t.Error("Refusal should not be usable")
	}
}

func TestCleanResponseRejectsEmpty(t *testing.T) {
	if _, ok := CleanResponse("   \n  "); ok {
		t.Error("Empty response should not be usable")
	}
}

type cannedGenerator struct {
	answer string
	err    error
	calls  int
}

func (c *cannedGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	c.calls++
	return c.answer, c.err
}

func TestDetectFrameworkWithModel(t *testing.T) {
	files := []types.FileFunctions{
		{FilePath: "app.py", Functions: []types.Function{{Name: "index", Source: "def index():\n    return 'ok'"}}},
	}

	gen := &cannedGenerator{answer: "flask\n"}
	fw := DetectFrameworkWithModel(context.Background(), gen, files)
	if fw != types.FrameworkFlask {
		t.Errorf("Expected flask, got %s", fw)
	}

	gen = &cannedGenerator{answer: "kubernetes"}
	fw = DetectFrameworkWithModel(context.Background(), gen, files)
	if fw != types.FrameworkGeneral {
		t.Errorf("Invalid answer should fall back to general, got %s", fw)
	}
}

func TestDetectFrameworkWithModelEmptySample(t *testing.T) {
	gen := &cannedGenerator{answer: "flask"}
	fw := DetectFrameworkWithModel(context.Background(), gen, nil)
	if fw != types.FrameworkGeneral {
		t.Errorf("Expected general for empty sample, got %s", fw)
	}
	if gen.calls != 0 {
		t.Error("No model call should be made for an empty sample")
	}
}
