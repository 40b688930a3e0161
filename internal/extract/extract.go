package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/internal/scan"
	"github.com/genaitools/testgen/pkg/types"
)

// Source files that exist for wiring, not logic; never worth generating
// tests for.
var skipPythonFiles = map[string]bool{
	"setup.py":    true,
	"manage.py":   true,
	"wsgi.py":     true,
	"asgi.py":     true,
	"settings.py": true,
	"conftest.py": true,
	"__init__.py": true,
}

// ExtractRepo walks the repository and extracts functions from every source
// file of the detected language. Files that fail to parse contribute an
// empty entry and are skipped; they never abort the run.
func ExtractRepo(repoRoot string, det types.DetectionResult) ([]types.FileFunctions, error) {
	var exts []string
	switch det.Language {
	case types.LangPython:
		exts = []string{".py"}
	case types.LangTypeScript:
		exts = []string{".ts"}
	default:
		return nil, nil
	}

	files, err := scan.ListFiles(repoRoot, exts...)
	if err != nil {
		return nil, err
	}

	var result []types.FileFunctions
	for _, rel := range files {
		if !extractableFile(rel, det.Language) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(repoRoot, rel))
		if err != nil {
			logrus.WithError(err).WithField("file", rel).Warn("Skipping unreadable file")
			continue
		}

		funcs := ExtractFile(rel, string(content), det)
		if len(funcs) == 0 {
			continue
		}
		logrus.WithFields(logrus.Fields{
			"file":      rel,
			"functions": len(funcs),
		}).Debug("Extracted functions")
		result = append(result, types.FileFunctions{FilePath: rel, Functions: funcs})
	}
	return result, nil
}

// ExtractFile extracts the top-level functions (or route handlers, when a
// framework filter applies) from a single source file. It never fails: on
// anything it cannot parse it returns an empty slice.
func ExtractFile(filePath, content string, det types.DetectionResult) []types.Function {
	// Files with only imports or boilerplate are not worth a prompt
	if len(strings.TrimSpace(content)) < 50 {
		return nil
	}

	switch det.Language {
	case types.LangPython:
		return extractPython(filePath, content, det.Framework)
	case types.LangTypeScript:
		return extractTypeScript(filePath, content, det.Framework)
	default:
		return nil
	}
}

func extractableFile(rel string, lang types.Language) bool {
	base := filepath.Base(rel)
	switch lang {
	case types.LangPython:
		if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py") {
			return false
		}
		return !skipPythonFiles[base]
	case types.LangTypeScript:
		return !strings.HasSuffix(base, ".spec.ts") && !strings.HasSuffix(base, ".d.ts")
	}
	return false
}
