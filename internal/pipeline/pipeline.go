package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/internal/extract"
	"github.com/genaitools/testgen/internal/llm"
	"github.com/genaitools/testgen/internal/prompt"
	"github.com/genaitools/testgen/internal/storage"
	"github.com/genaitools/testgen/internal/writer"
	"github.com/genaitools/testgen/pkg/types"
)

// Pipeline drives per-file test generation: extract, build prompt, call the
// generator, write the result. Files share no mutable state, so the only
// coordination is collecting results.
type Pipeline struct {
	Store   *prompt.Store
	Gen     llm.Generator
	Ledger  *storage.Ledger // optional; nil disables run recording
	Workers int             // <=1 means sequential
}

// Report summarizes one run.
type Report struct {
	RunID        string
	Detection    types.DetectionResult
	FilesScanned int
	Written      []string // test paths relative to the repo root
	Scaffolding  []string // conftest.py and friends
	Skipped      []*FileError
	Interrupted  bool

	details []fileResult // per-file metadata for the ledger
}

// GenerateTests runs the generation phase over a checkout. Per-file
// failures are collected into the report; only setup problems (unsupported
// language, unwritable tests directory) return an error.
func (p *Pipeline) GenerateTests(ctx context.Context, repoRoot, repoURL string, det types.DetectionResult) (*Report, error) {
	started := time.Now()

	// Resolving the template up front surfaces unsupported languages before
	// any generation happens.
	if _, err := p.Store.Lookup(det.Language, det.Framework); err != nil {
		return nil, err
	}

	files, err := extract.ExtractRepo(repoRoot, det)
	if err != nil {
		return nil, fmt.Errorf("scan repository: %w", err)
	}

	// Heuristics came up empty: ask the model once, before building prompts.
	if det.Language == types.LangPython && det.Framework == types.FrameworkGeneral && p.Gen != nil {
		det.Framework = llm.DetectFrameworkWithModel(ctx, p.Gen, files)
	}

	report := &Report{
		RunID:        uuid.New().String(),
		Detection:    det,
		FilesScanned: len(files),
	}

	w := writer.New(repoRoot, det)
	scaffolding, err := w.EnsureScaffolding()
	if err != nil {
		// An unwritable tests directory is environment misconfiguration;
		// abort before any generation call.
		return nil, fmt.Errorf("prepare tests directory: %w", err)
	}
	report.Scaffolding = scaffolding

	p.processFiles(ctx, w, det, files, report)
	report.Interrupted = ctx.Err() != nil

	p.record(repoRoot, repoURL, report, started)
	return report, nil
}

type fileResult struct {
	written   string
	functions int
	source    string
	size      int64
	skip      *FileError
}

func (p *Pipeline) processFiles(ctx context.Context, w *writer.Writer, det types.DetectionResult, files []types.FileFunctions, report *Report) {
	workers := p.Workers
	if workers <= 1 {
		for _, ff := range files {
			if ctx.Err() != nil {
				return
			}
			collect(report, p.processFile(ctx, w, det, ff))
		}
		return
	}

	jobs := make(chan types.FileFunctions)
	results := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ff := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- p.processFile(ctx, w, det, ff)
			}
		}()
	}

	for _, ff := range files {
		if ctx.Err() != nil {
			break
		}
		jobs <- ff
	}
	close(jobs)
	wg.Wait()
	close(results)

	for res := range results {
		collect(report, res)
	}
}

func collect(report *Report, res fileResult) {
	if res.skip != nil {
		logrus.WithError(res.skip.Err).WithFields(logrus.Fields{
			"file": res.skip.Path,
			"kind": res.skip.Kind,
		}).Warn("Skipping file")
		report.Skipped = append(report.Skipped, res.skip)
		return
	}
	report.Written = append(report.Written, res.written)
	report.details = append(report.details, res)
}

// processFile runs one source file through build → generate → write.
func (p *Pipeline) processFile(ctx context.Context, w *writer.Writer, det types.DetectionResult, ff types.FileFunctions) fileResult {
	tmpl, err := p.Store.Lookup(det.Language, det.Framework)
	if err != nil {
		return fileResult{skip: &FileError{Kind: KindUnsupportedLanguage, Path: ff.FilePath, Err: err}}
	}

	functionsCode := prompt.RenderFunctions(det.Language, ff.Functions)
	built := prompt.Build(tmpl, ff.FilePath, functionsCode)

	raw, err := p.Gen.Generate(ctx, prompt.SystemMessage(string(det.Framework)), built)
	if err != nil {
		kind := KindGenerationError
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindGenerationTimeout
		}
		return fileResult{skip: &FileError{Kind: kind, Path: ff.FilePath, Err: err}}
	}

	code, ok := llm.CleanResponse(raw)
	if !ok {
		return fileResult{skip: &FileError{
			Kind: KindGenerationError,
			Path: ff.FilePath,
			Err:  errors.New("model did not return usable test code"),
		}}
	}

	gen := &types.GeneratedTest{
		SourcePath: ff.FilePath,
		Code:       code,
		Framework:  det.Framework,
		Functions:  len(ff.Functions),
	}
	rel, err := w.Write(gen, ff.Functions)
	if err != nil {
		return fileResult{skip: &FileError{Kind: KindWriteError, Path: ff.FilePath, Err: err}}
	}

	return fileResult{
		written:   rel,
		functions: len(ff.Functions),
		source:    ff.FilePath,
		size:      int64(len(code)),
	}
}

// record persists the run to the ledger, when one is attached.
func (p *Pipeline) record(repoRoot, repoURL string, report *Report, started time.Time) {
	if p.Ledger == nil {
		return
	}

	status := "completed"
	if report.Interrupted {
		status = "interrupted"
	}

	run := &types.RunRecord{
		ID:           report.RunID,
		RepoURL:      repoURL,
		RepoPath:     repoRoot,
		Language:     report.Detection.Language,
		Framework:    report.Detection.Framework,
		FilesScanned: report.FilesScanned,
		FilesSkipped: len(report.Skipped),
		TestsWritten: len(report.Written),
		Status:       status,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := p.Ledger.SaveRun(run); err != nil {
		logrus.WithError(err).Warn("Failed to record run in ledger")
		return
	}

	for _, res := range report.details {
		rec := &types.GeneratedFileRecord{
			RunID:      report.RunID,
			SourcePath: res.source,
			TestPath:   res.written,
			Functions:  res.functions,
			SizeBytes:  res.size,
			CreatedAt:  time.Now(),
		}
		if err := p.Ledger.SaveGeneratedFile(rec); err != nil {
			logrus.WithError(err).Warn("Failed to record generated file in ledger")
		}
	}
}

// RecordRunnerResult upserts the runner outcome onto an already-recorded
// run.
func (p *Pipeline) RecordRunnerResult(report *Report, repoRoot, repoURL string, exitCode int, coverage string, started time.Time) {
	if p.Ledger == nil {
		return
	}
	status := "completed"
	if report.Interrupted {
		status = "interrupted"
	}
	run := &types.RunRecord{
		ID:           report.RunID,
		RepoURL:      repoURL,
		RepoPath:     repoRoot,
		Language:     report.Detection.Language,
		Framework:    report.Detection.Framework,
		FilesScanned: report.FilesScanned,
		FilesSkipped: len(report.Skipped),
		TestsWritten: len(report.Written),
		RunnerExit:   exitCode,
		Coverage:     coverage,
		Status:       status,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := p.Ledger.SaveRun(run); err != nil {
		logrus.WithError(err).Warn("Failed to record runner result in ledger")
	}
}
