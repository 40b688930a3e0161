package types

import "time"

// Language is a supported source language.
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// Framework is a supported web framework, or FrameworkGeneral when none
// was detected.
type Framework string

const (
	FrameworkFlask   Framework = "flask"
	FrameworkDjango  Framework = "django"
	FrameworkFastAPI Framework = "fastapi"
	FrameworkAngular Framework = "angular"
	FrameworkGeneral Framework = "general"
)

// ParseFramework maps a user-supplied framework name to a known Framework.
// Unrecognized names fall back to FrameworkGeneral.
func ParseFramework(s string) Framework {
	switch Framework(s) {
	case FrameworkFlask, FrameworkDjango, FrameworkFastAPI, FrameworkAngular:
		return Framework(s)
	default:
		return FrameworkGeneral
	}
}

// DetectionResult is the (language, framework) pair inferred for a
// repository. Computed once per run, read-only afterwards.
type DetectionResult struct {
	Language  Language  `json:"language"`
	Framework Framework `json:"framework"`
}

// Function is a single extracted top-level function or route handler.
type Function struct {
	Name       string    `json:"name"`
	FilePath   string    `json:"file_path"`
	Line       int       `json:"line"`
	Source     string    `json:"source"`
	Docstring  string    `json:"docstring,omitempty"`
	Args       []string  `json:"args,omitempty"`
	Decorators []string  `json:"decorators,omitempty"`
	ReturnType string    `json:"return_type,omitempty"`
	IsAsync    bool      `json:"is_async,omitempty"`
	Framework  Framework `json:"framework,omitempty"`
}

// FileFunctions groups the functions extracted from one source file.
type FileFunctions struct {
	FilePath  string     `json:"file_path"`
	Functions []Function `json:"functions"`
}

// GeneratedTest is the raw model output for one source file, plus the
// metadata needed to place it on disk.
type GeneratedTest struct {
	SourcePath string    `json:"source_path"`
	TestPath   string    `json:"test_path,omitempty"`
	Code       string    `json:"-"`
	Framework  Framework `json:"framework"`
	Functions  int       `json:"functions"`
}

// RunRecord is one pipeline run as stored in the ledger.
type RunRecord struct {
	ID            string    `json:"id"`
	RepoURL       string    `json:"repo_url"`
	RepoPath      string    `json:"repo_path"`
	Language      Language  `json:"language"`
	Framework     Framework `json:"framework"`
	FilesScanned  int       `json:"files_scanned"`
	FilesSkipped  int       `json:"files_skipped"`
	TestsWritten  int       `json:"tests_written"`
	RunnerExit    int       `json:"runner_exit"`
	Coverage      string    `json:"coverage,omitempty"`
	Status        string    `json:"status"` // completed, interrupted, failed
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// GeneratedFileRecord is one written test file as stored in the ledger.
type GeneratedFileRecord struct {
	RunID      string    `json:"run_id"`
	SourcePath string    `json:"source_path"`
	TestPath   string    `json:"test_path"`
	Functions  int       `json:"functions"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
