// Package history persists documentation test runs to SQLite as append-only
// rows, one per suite invocation, with the serialized result list.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/isdmx/doctest/sandbox"
	"github.com/isdmx/doctest/suite"
)

//go:embed schema.sql
var schemaSQL string

// Run is one persisted suite invocation.
type Run struct {
	ID            int64                     `json:"id"`
	RepositoryID  string                    `json:"repositoryId"`
	DocumentID    string                    `json:"documentId,omitempty"`
	TotalExamples int                       `json:"totalExamples"`
	Passed        int                       `json:"passed"`
	Failed        int                       `json:"failed"`
	Errors        int                       `json:"errors"`
	Skipped       int                       `json:"skipped"`
	DurationMs    int64                     `json:"durationMs"`
	ExecutedAt    time.Time                 `json:"executedAt"`
	Results       []sandbox.ExecutionResult `json:"results"`
}

// Store manages the run-history database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the history database at dbPath and
// initializes its schema. Pass ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks instead
	// of failing under concurrent initialization.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one completed suite as a history row.
func (s *Store) Record(ctx context.Context, ts *suite.DocTestSuite) error {
	resultsJSON, err := json.Marshal(ts.Results)
	if err != nil {
		return fmt.Errorf("serialize results: %w", err)
	}

	query := `INSERT INTO doc_test_runs
		(repository_id, document_id, total_examples, passed, failed, errors, skipped, duration_ms, executed_at, results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		ts.RepositoryID, ts.DocumentID,
		ts.TotalExamples, ts.Passed, ts.Failed, ts.Errors, ts.Skipped,
		ts.DurationMs, ts.ExecutedAt, string(resultsJSON))
	if err != nil {
		return fmt.Errorf("record suite run: %w", err)
	}
	return nil
}

// Recent returns the most recent n runs for a repository, newest first.
func (s *Store) Recent(ctx context.Context, repositoryID string, n int) ([]*Run, error) {
	query := `SELECT id, repository_id, document_id, total_examples, passed, failed, errors, skipped, duration_ms, executed_at, results
		FROM doc_test_runs
		WHERE repository_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, repositoryID, n)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var resultsJSON string
		if err := rows.Scan(&run.ID, &run.RepositoryID, &run.DocumentID,
			&run.TotalExamples, &run.Passed, &run.Failed, &run.Errors, &run.Skipped,
			&run.DurationMs, &run.ExecutedAt, &resultsJSON); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if err := json.Unmarshal([]byte(resultsJSON), &run.Results); err != nil {
			return nil, fmt.Errorf("deserialize results for run %d: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}
