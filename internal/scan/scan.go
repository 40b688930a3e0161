package scan

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Directories never worth scanning, regardless of .gitignore.
var skipDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	"dist":          true,
	"build":         true,
	"coverage":      true,
	"htmlcov":       true,
	".pytest_cache": true,
	"e2e":           true,
	"vendor":        true,
}

// LoadIgnore compiles the repository's .gitignore, if present. Returns nil
// when there are no rules.
func LoadIgnore(root string) *ignore.GitIgnore {
	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}

// ListFiles walks the tree under root and returns files whose extension is
// in exts, skipping hidden directories, the fixed skip list, and anything
// matched by .gitignore. Paths are returned relative to root, sorted by the
// walk order (deterministic for a given snapshot).
func ListFiles(root string, exts ...string) ([]string, error) {
	matcher := LoadIgnore(root)
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := info.Name()
		if info.IsDir() {
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extSet[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
