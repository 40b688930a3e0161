package pipeline

import "fmt"

// Kind classifies a per-file failure. Every kind is local-skip: the file is
// dropped and the run continues.
type Kind string

const (
	KindUnsupportedLanguage Kind = "unsupported_language"
	KindExtractionFailure   Kind = "extraction_failure"
	KindGenerationError     Kind = "generation_error"
	KindGenerationTimeout   Kind = "generation_timeout"
	KindWriteError          Kind = "write_error"
	KindRunnerFailure       Kind = "runner_failure"
	KindRunnerTimeout       Kind = "runner_timeout"
)

// FileError is a classified failure tied to one source file.
type FileError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
