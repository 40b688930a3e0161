package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/genaitools/testgen/internal/scan"
	"github.com/genaitools/testgen/pkg/types"
)

// Code indicators scored per Python framework. Matching is case-insensitive
// on file content.
var frameworkIndicators = map[types.Framework][]string{
	types.FrameworkFlask: {
		"from flask import",
		"flask(__name__)",
		"app = flask",
		"@app.route",
		"flask.flask",
	},
	types.FrameworkDjango: {
		"from django",
		"django.http",
		"httpresponse",
		"django_settings_module",
	},
	types.FrameworkFastAPI: {
		"from fastapi",
		"fastapi()",
		"app = fastapi",
		"@app.get",
		"@app.post",
		"fastapi.fastapi",
	},
}

// Framework-specific file names, worth more than a content hit.
var frameworkFiles = map[types.Framework][]string{
	types.FrameworkFlask:   {"app.py", "application.py", "run.py"},
	types.FrameworkDjango:  {"manage.py", "settings.py", "wsgi.py", "asgi.py"},
	types.FrameworkFastAPI: {"main.py"},
}

var angularDependencies = []string{
	"@angular/core",
	"@angular/cli",
	"@angular/common",
	"@angular/platform-browser",
}

var angularSourcePatterns = []string{
	"@Component",
	"@Injectable",
	"@NgModule",
	"import { Component }",
	"import { Injectable }",
}

// Detect inspects a repository snapshot and infers its (language, framework)
// pair. Best-effort and deterministic: a wrong guess only changes which
// prompt template is used downstream.
func Detect(repoRoot string) (types.DetectionResult, error) {
	if isAngularProject(repoRoot) {
		return types.DetectionResult{Language: types.LangTypeScript, Framework: types.FrameworkAngular}, nil
	}

	pyFiles, err := scan.ListFiles(repoRoot, ".py")
	if err != nil {
		return types.DetectionResult{Language: types.LangUnknown, Framework: types.FrameworkGeneral}, err
	}
	if len(pyFiles) > 0 {
		return types.DetectionResult{
			Language:  types.LangPython,
			Framework: detectPythonFramework(repoRoot, pyFiles),
		}, nil
	}

	tsFiles, _ := scan.ListFiles(repoRoot, ".ts", ".tsx")
	if len(tsFiles) > 0 {
		return types.DetectionResult{Language: types.LangTypeScript, Framework: types.FrameworkGeneral}, nil
	}

	return types.DetectionResult{Language: types.LangUnknown, Framework: types.FrameworkGeneral}, nil
}

func isAngularProject(repoRoot string) bool {
	if _, err := os.Stat(filepath.Join(repoRoot, "angular.json")); err == nil {
		return true
	}

	if data, err := os.ReadFile(filepath.Join(repoRoot, "package.json")); err == nil {
		var pkg struct {
			Dependencies    map[string]string `json:"dependencies"`
			DevDependencies map[string]string `json:"devDependencies"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			for _, dep := range angularDependencies {
				if _, ok := pkg.Dependencies[dep]; ok {
					return true
				}
				if _, ok := pkg.DevDependencies[dep]; ok {
					return true
				}
			}
		}
	}

	// Fall back to scanning a handful of TypeScript sources for decorators
	tsFiles, _ := scan.ListFiles(repoRoot, ".ts")
	limit := len(tsFiles)
	if limit > 5 {
		limit = 5
	}
	for _, rel := range tsFiles[:limit] {
		content, err := os.ReadFile(filepath.Join(repoRoot, rel))
		if err != nil {
			continue
		}
		for _, pattern := range angularSourcePatterns {
			if strings.Contains(string(content), pattern) {
				return true
			}
		}
	}
	return false
}

func detectPythonFramework(repoRoot string, pyFiles []string) types.Framework {
	scores := map[types.Framework]int{
		types.FrameworkFlask:   0,
		types.FrameworkDjango:  0,
		types.FrameworkFastAPI: 0,
	}

	for _, rel := range pyFiles {
		content, err := os.ReadFile(filepath.Join(repoRoot, rel))
		if err != nil {
			continue
		}
		lower := strings.ToLower(string(content))
		for fw, indicators := range frameworkIndicators {
			for _, ind := range indicators {
				if strings.Contains(lower, ind) {
					scores[fw]++
				}
			}
		}

		base := filepath.Base(rel)
		for fw, names := range frameworkFiles {
			for _, name := range names {
				if base == name {
					scores[fw] += 2
				}
			}
		}
	}

	scoreManifest(filepath.Join(repoRoot, "requirements.txt"), scores)
	scoreManifest(filepath.Join(repoRoot, "pyproject.toml"), scores)

	best := types.FrameworkGeneral
	bestScore := 0
	// Fixed iteration order keeps ties deterministic
	for _, fw := range []types.Framework{types.FrameworkFlask, types.FrameworkDjango, types.FrameworkFastAPI} {
		if scores[fw] > bestScore {
			best = fw
			bestScore = scores[fw]
		}
	}
	return best
}

// scoreManifest bumps a framework's score when its package appears in a
// dependency manifest. A manifest mention outweighs a single code hit.
func scoreManifest(path string, scores map[types.Framework]int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	content := strings.ToLower(string(data))
	if strings.Contains(content, "flask") {
		scores[types.FrameworkFlask] += 3
	}
	if strings.Contains(content, "django") {
		scores[types.FrameworkDjango] += 3
	}
	if strings.Contains(content, "fastapi") {
		scores[types.FrameworkFastAPI] += 3
	}
}
