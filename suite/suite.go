// Package suite orchestrates documentation test runs: it extracts examples
// across a repository's documents, executes the retained ones through the
// sandbox runner on a bounded worker pool, aggregates pass/fail counts,
// persists run history best-effort, and renders a check-run summary.
package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/isdmx/doctest/docstore"
	"github.com/isdmx/doctest/extractor"
	"github.com/isdmx/doctest/language"
	"github.com/isdmx/doctest/sandbox"
)

// Defaults for the orchestrator knobs.
const (
	DefaultWorkers      = 4
	DefaultMaxDocuments = 50
)

// ErrSuiteDisabled is returned when the repository's configuration has
// documentation tests turned off. Nothing is executed.
var ErrSuiteDisabled = errors.New("documentation tests are disabled for this repository")

// DocTestSuite is the aggregate outcome of one orchestrator invocation.
type DocTestSuite struct {
	RepositoryID string `json:"repositoryId"`

	// DocumentID is set for single-document runs; empty means the whole
	// repository was tested.
	DocumentID string `json:"documentId,omitempty"`

	TotalExamples int `json:"totalExamples"`
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	Errors        int `json:"errors"`
	Skipped       int `json:"skipped"`

	// Results are ordered by document then line, regardless of execution
	// concurrency.
	Results []sandbox.ExecutionResult `json:"results"`

	ExecutedAt time.Time `json:"executedAt"`
	DurationMs int64     `json:"durationMs"`
}

// SandboxRunner executes one example; the production implementation is
// sandbox.Runner.
type SandboxRunner interface {
	Run(ctx context.Context, example extractor.CodeExample, timeout time.Duration) sandbox.ExecutionResult
}

// HistoryStore persists completed suites. Persistence is best-effort: a
// failing store is logged and the in-memory suite remains the source of
// truth.
type HistoryStore interface {
	Record(ctx context.Context, s *DocTestSuite) error
}

// Engine drives extraction and execution across a repository. All
// collaborators are injected; the engine holds no ambient global state.
type Engine struct {
	logger       *zap.Logger
	docs         docstore.DocumentStore
	configs      docstore.ConfigStore
	runner       SandboxRunner
	history      HistoryStore
	workers      int
	maxDocuments int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHistory attaches a run-history store.
func WithHistory(h HistoryStore) EngineOption {
	return func(e *Engine) {
		e.history = h
	}
}

// WithWorkers sets the bounded worker pool size.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxDocuments caps the number of documents per run.
func WithMaxDocuments(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxDocuments = n
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(logger *zap.Logger, docs docstore.DocumentStore, configs docstore.ConfigStore, runner SandboxRunner, opts ...EngineOption) *Engine {
	e := &Engine{
		logger:       logger,
		docs:         docs,
		configs:      configs,
		runner:       runner,
		workers:      DefaultWorkers,
		maxDocuments: DefaultMaxDocuments,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// job pairs one example with its position in the final result sequence.
type job struct {
	index   int
	example extractor.CodeExample
}

// Run executes the documentation test suite for a repository, or for a
// single document when documentID is non-empty.
//
// Configuration errors (suite disabled, invalid timeout) abort the run
// before anything executes. Execution faults never do: each example
// resolves to a typed result and the suite always accounts for every
// discovered example exactly once.
func (e *Engine) Run(ctx context.Context, repositoryID, documentID string) (*DocTestSuite, error) {
	start := time.Now()

	cfg, err := e.configs.Load(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("load doc test config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("repository %s: %w", repositoryID, ErrSuiteDisabled)
	}
	if cfg.TimeoutSec < 1 {
		return nil, fmt.Errorf("repository %s: invalid timeout %d, must be >= 1 second", repositoryID, cfg.TimeoutSec)
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	docs, err := e.resolveDocuments(ctx, repositoryID, documentID, cfg)
	if err != nil {
		return nil, err
	}

	allowed := allowedLanguages(cfg)

	// Discovery order is document-then-line; each example keeps its slot
	// in the result sequence no matter which worker finishes first.
	var jobs []job
	results := make([]sandbox.ExecutionResult, 0)
	for _, doc := range docs {
		for _, ex := range extractor.Extract(doc.Content, doc.ID, doc.Path) {
			if allowed != nil && !allowed[ex.Language] {
				results = append(results, sandbox.ExecutionResult{
					ExampleID:    ex.ID,
					Language:     ex.Language,
					Status:       sandbox.StatusSkipped,
					ErrorMessage: fmt.Sprintf("language %q excluded by configuration", ex.Language),
				})
				continue
			}
			jobs = append(jobs, job{index: len(results), example: ex})
			results = append(results, sandbox.ExecutionResult{})
		}
	}

	e.logger.Info("running documentation test suite",
		zap.String("repository_id", repositoryID),
		zap.String("document_id", documentID),
		zap.Int("documents", len(docs)),
		zap.Int("examples", len(results)),
		zap.Int("workers", e.workers))

	e.execute(ctx, jobs, results, timeout)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	suite := &DocTestSuite{
		RepositoryID: repositoryID,
		DocumentID:   documentID,
		Results:      results,
		ExecutedAt:   start.UTC(),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	for _, res := range results {
		suite.TotalExamples++
		switch res.Status {
		case sandbox.StatusPassed:
			suite.Passed++
		case sandbox.StatusFailed:
			suite.Failed++
		case sandbox.StatusSkipped:
			suite.Skipped++
		default:
			suite.Errors++
		}
	}

	if e.history != nil {
		if err := e.history.Record(ctx, suite); err != nil {
			e.logger.Warn("failed to persist suite history",
				zap.String("repository_id", repositoryID),
				zap.Error(err))
		}
	}

	e.logger.Info("documentation test suite finished",
		zap.String("repository_id", repositoryID),
		zap.Int("total", suite.TotalExamples),
		zap.Int("passed", suite.Passed),
		zap.Int("failed", suite.Failed),
		zap.Int("errors", suite.Errors),
		zap.Int("skipped", suite.Skipped),
		zap.Int64("duration_ms", suite.DurationMs))

	return suite, nil
}

// execute drains jobs through the bounded worker pool, writing each result
// into its preassigned slot. Results share no state, so slot writes are the
// only synchronization besides the final wait.
func (e *Engine) execute(ctx context.Context, jobs []job, results []sandbox.ExecutionResult, timeout time.Duration) {
	if len(jobs) == 0 {
		return
	}

	workers := e.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				// Each example gets its own timeout scope; a
				// suite-level cancellation reaches the subprocess
				// through ctx.
				results[j.index] = e.runner.Run(ctx, j.example, timeout)
			}
		}()
	}

	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()
}

// resolveDocuments returns the document set for a run: the single requested
// document, or the whole repository minus exclusions, capped for bounded
// suite duration.
func (e *Engine) resolveDocuments(ctx context.Context, repositoryID, documentID string, cfg docstore.DocTestConfig) ([]docstore.Document, error) {
	if documentID != "" {
		doc, err := e.docs.GetDocument(ctx, repositoryID, documentID)
		if err != nil {
			return nil, fmt.Errorf("get document: %w", err)
		}
		return []docstore.Document{doc}, nil
	}

	docs, err := e.docs.ListDocuments(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	filtered := docs[:0]
	for _, doc := range docs {
		if excluded(doc.Path, cfg.ExcludePaths) {
			continue
		}
		filtered = append(filtered, doc)
	}

	if len(filtered) > e.maxDocuments {
		e.logger.Warn("document count exceeds per-run cap, truncating",
			zap.String("repository_id", repositoryID),
			zap.Int("documents", len(filtered)),
			zap.Int("cap", e.maxDocuments))
		filtered = filtered[:e.maxDocuments]
	}
	return filtered, nil
}

// excluded reports whether a document path matches any configured exclusion
// pattern. Patterns are plain substrings.
func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// allowedLanguages builds the execution allow-list from configuration. A
// nil map means every supported language is allowed. Entries are run
// through the resolver so shorthand like "py" works in config files.
func allowedLanguages(cfg docstore.DocTestConfig) map[language.Language]bool {
	if len(cfg.Languages) == 0 {
		return nil
	}
	allowed := make(map[language.Language]bool, len(cfg.Languages))
	for _, tag := range cfg.Languages {
		if lang, ok := language.Normalize(tag); ok {
			allowed[lang] = true
		}
	}
	return allowed
}
