package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/genaitools/testgen/pkg/types"
)

// Ledger records pipeline runs and the test files they produced.
type Ledger struct {
	db *sql.DB
}

// DefaultLedgerPath is where the ledger lives unless overridden:
// ~/.testgen/runs.db.
func DefaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".testgen", "runs.db")
	}
	return filepath.Join(home, ".testgen", "runs.db")
}

// OpenLedger opens (and if needed creates) the run ledger at dbPath.
func OpenLedger(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db}
	if err := l.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		repo_url TEXT,
		repo_path TEXT,
		language TEXT,
		framework TEXT,
		files_scanned INTEGER,
		files_skipped INTEGER,
		tests_written INTEGER,
		runner_exit INTEGER,
		coverage TEXT,
		status TEXT,
		started_at INTEGER,
		finished_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS generated_files (
		run_id TEXT,
		source_path TEXT,
		test_path TEXT,
		functions INTEGER,
		size_bytes INTEGER,
		created_at INTEGER,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_generated_files_run ON generated_files(run_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// SaveRun inserts or replaces a run record.
func (l *Ledger) SaveRun(run *types.RunRecord) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO runs
		(id, repo_url, repo_path, language, framework, files_scanned, files_skipped,
		 tests_written, runner_exit, coverage, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoURL, run.RepoPath, string(run.Language), string(run.Framework),
		run.FilesScanned, run.FilesSkipped, run.TestsWritten, run.RunnerExit,
		run.Coverage, run.Status, run.StartedAt.Unix(), run.FinishedAt.Unix())
	return err
}

// SaveGeneratedFile records one written test file for a run.
func (l *Ledger) SaveGeneratedFile(rec *types.GeneratedFileRecord) error {
	_, err := l.db.Exec(`
		INSERT INTO generated_files
		(run_id, source_path, test_path, functions, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SourcePath, rec.TestPath, rec.Functions, rec.SizeBytes,
		rec.CreatedAt.Unix())
	return err
}

// ListRuns returns the most recent runs, newest first.
func (l *Ledger) ListRuns(limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(`
		SELECT id, repo_url, repo_path, language, framework, files_scanned,
		       files_skipped, tests_written, runner_exit, coverage, status,
		       started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var run types.RunRecord
		var language, framework string
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.RepoURL, &run.RepoPath, &language, &framework,
			&run.FilesScanned, &run.FilesSkipped, &run.TestsWritten, &run.RunnerExit,
			&run.Coverage, &run.Status, &started, &finished); err != nil {
			return nil, err
		}
		run.Language = types.Language(language)
		run.Framework = types.Framework(framework)
		run.StartedAt = time.Unix(started, 0)
		run.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListGeneratedFiles returns the files written during one run.
func (l *Ledger) ListGeneratedFiles(runID string) ([]types.GeneratedFileRecord, error) {
	rows, err := l.db.Query(`
		SELECT run_id, source_path, test_path, functions, size_bytes, created_at
		FROM generated_files WHERE run_id = ? ORDER BY test_path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []types.GeneratedFileRecord
	for rows.Next() {
		var rec types.GeneratedFileRecord
		var created int64
		if err := rows.Scan(&rec.RunID, &rec.SourcePath, &rec.TestPath,
			&rec.Functions, &rec.SizeBytes, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(created, 0)
		files = append(files, rec)
	}
	return files, rows.Err()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
