package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/pkg/types"
)

// Writer places generated test code on disk. Python tests mirror the source
// layout under tests/; TypeScript specs sit next to their source file, the
// way the Angular CLI lays them out. Existing files are overwritten.
type Writer struct {
	repoRoot  string
	language  types.Language
	framework types.Framework
}

func New(repoRoot string, det types.DetectionResult) *Writer {
	return &Writer{repoRoot: repoRoot, language: det.Language, framework: det.Framework}
}

// TestPath computes the test file path (relative to the repo root) for a
// source file path (also relative).
func (w *Writer) TestPath(sourceRel string) string {
	dir := filepath.Dir(sourceRel)
	base := filepath.Base(sourceRel)

	if w.language == types.LangTypeScript {
		name := strings.TrimSuffix(base, ".ts") + ".spec.ts"
		return filepath.Join(dir, name)
	}

	if dir == "." {
		return filepath.Join("tests", "test_"+base)
	}
	return filepath.Join("tests", dir, "test_"+base)
}

// Write writes one generated test verbatim (plus header and import block)
// to its computed path and returns that path, relative to the repo root.
func (w *Writer) Write(gen *types.GeneratedTest, functions []types.Function) (string, error) {
	testRel := w.TestPath(gen.SourcePath)
	testAbs := filepath.Join(w.repoRoot, testRel)

	if err := os.MkdirAll(filepath.Dir(testAbs), 0755); err != nil {
		return "", fmt.Errorf("create test dir: %w", err)
	}

	code := gen.Code
	if w.language == types.LangPython {
		code = w.structurePython(gen.SourcePath, code, functions)
	}

	if err := os.WriteFile(testAbs, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("write test file: %w", err)
	}

	logrus.WithField("file", testRel).Debug("Wrote test file")
	return testRel, nil
}

// EnsureScaffolding writes the framework conftest.py (and pytest.ini for
// django) once per run. Returns the created paths, relative to the repo
// root. Existing files are left alone.
func (w *Writer) EnsureScaffolding() ([]string, error) {
	if w.language != types.LangPython {
		return nil, nil
	}

	var created []string

	conftestRel := filepath.Join("tests", "conftest.py")
	conftestAbs := filepath.Join(w.repoRoot, conftestRel)
	if _, err := os.Stat(conftestAbs); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(conftestAbs), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(conftestAbs, []byte(conftestFor(w.framework)), 0644); err != nil {
			return nil, err
		}
		created = append(created, conftestRel)
	}

	if w.framework == types.FrameworkDjango {
		iniRel := "pytest.ini"
		iniAbs := filepath.Join(w.repoRoot, iniRel)
		if _, err := os.Stat(iniAbs); os.IsNotExist(err) {
			if err := os.WriteFile(iniAbs, []byte(djangoPytestIni), 0644); err != nil {
				return nil, err
			}
			created = append(created, iniRel)
		}
	}

	return created, nil
}

// structurePython prepends the header, the framework import block and the
// source module import to the generated code.
func (w *Writer) structurePython(sourceRel, code string, functions []types.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generated test file\n# Source file: %s\n# Framework: %s\n\n", sourceRel, w.framework)
	b.WriteString(frameworkImports(w.framework))
	b.WriteString("\n")
	b.WriteString(sourceImport(sourceRel, functions))
	b.WriteString("\n\n")
	b.WriteString(code)
	b.WriteString("\n")
	return b.String()
}

func frameworkImports(fw types.Framework) string {
	switch fw {
	case types.FrameworkFlask:
		return "import pytest\nfrom flask import json\n"
	case types.FrameworkDjango:
		return "import pytest\nfrom django.test import Client\nfrom django.urls import reverse\n"
	case types.FrameworkFastAPI:
		return "import pytest\nfrom fastapi.testclient import TestClient\n"
	default:
		return "import pytest\n"
	}
}

// sourceImport builds the import line for the module under test. Few
// functions get named imports; many get a module import.
func sourceImport(sourceRel string, functions []types.Function) string {
	module := strings.TrimSuffix(sourceRel, ".py")
	module = strings.ReplaceAll(module, string(os.PathSeparator), ".")
	module = strings.ReplaceAll(module, "/", ".")

	if len(functions) == 0 || len(functions) > 5 {
		return "import " + module
	}

	names := make([]string, len(functions))
	for i, fn := range functions {
		names[i] = fn.Name
	}
	return fmt.Sprintf("from %s import %s", module, strings.Join(names, ", "))
}
