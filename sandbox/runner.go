package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isdmx/doctest/extractor"
	"github.com/isdmx/doctest/language"
)

// DefaultOutputLimit is the per-stream output ceiling in bytes.
const DefaultOutputLimit = 64 * 1024

const (
	dirPermission  = 0o755
	filePermission = 0o600
)

// Runner executes examples in ephemeral sandbox directories.
type Runner struct {
	logger      *zap.Logger
	tempRoot    string
	outputLimit int
	proc        ProcessRunner
	fs          FileSystem
}

// Option configures a Runner.
type Option func(*Runner)

// WithTempRoot sets the directory sandbox workdirs are created under.
func WithTempRoot(root string) Option {
	return func(r *Runner) {
		r.tempRoot = root
	}
}

// WithOutputLimit sets the per-stream output ceiling in bytes.
func WithOutputLimit(limit int) Option {
	return func(r *Runner) {
		r.outputLimit = limit
	}
}

// WithProcessRunner sets the ProcessRunner.
func WithProcessRunner(proc ProcessRunner) Option {
	return func(r *Runner) {
		r.proc = proc
	}
}

// WithFileSystem sets the FileSystem.
func WithFileSystem(fs FileSystem) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

// NewRunner creates a Runner with default implementations and optional
// overrides.
func NewRunner(logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:      logger,
		tempRoot:    os.TempDir(),
		outputLimit: DefaultOutputLimit,
		proc:        RealProcessRunner{},
		fs:          RealFileSystem{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one example with the given wall-clock timeout and resolves
// every failure mode into a structured result; it never returns an error.
// The sandbox directory is removed before Run returns on all paths.
func (r *Runner) Run(ctx context.Context, example extractor.CodeExample, timeout time.Duration) ExecutionResult {
	start := time.Now()

	result := ExecutionResult{
		ExampleID: example.ID,
		Language:  example.Language,
	}
	finish := func(res ExecutionResult) ExecutionResult {
		res.ExecutionTimeMs = time.Since(start).Milliseconds()
		return res
	}

	recipe, ok := language.RecipeFor(example.Language)
	if !ok {
		result.Status = StatusError
		result.ErrorMessage = fmt.Sprintf("no execution recipe for language %q", example.Language)
		return finish(result)
	}

	dir := filepath.Join(r.tempRoot, "doctest-"+uuid.NewString())
	if err := r.fs.MkdirAll(dir, dirPermission); err != nil {
		result.Status = StatusError
		result.ErrorMessage = fmt.Sprintf("sandbox setup failed: %v", err)
		return finish(result)
	}
	defer func() {
		if err := r.fs.RemoveAll(dir); err != nil {
			r.logger.Warn("failed to remove sandbox directory",
				zap.String("dir", dir),
				zap.Error(err))
		}
	}()

	source := example.Code
	if example.Language == language.Go {
		source = wrapGoSource(source)
	}
	if err := r.fs.WriteFile(filepath.Join(dir, recipe.FileName), []byte(source), filePermission); err != nil {
		result.Status = StatusError
		result.ErrorMessage = fmt.Sprintf("sandbox setup failed: %v", err)
		return finish(result)
	}

	env := buildEnv(dir, recipe)

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()
	runCtx, cancelRun := context.WithCancel(timeoutCtx)
	defer cancelRun()

	// Overflowing either stream terminates the process early; a snippet
	// printing unboundedly must not exhaust memory.
	stdout := newCapWriter(r.outputLimit, cancelRun)
	stderr := newCapWriter(r.outputLimit, cancelRun)

	if len(recipe.BuildArgv) > 0 {
		buildRes, done := r.runBuildStep(runCtx, timeoutCtx, dir, env, recipe, stderr)
		if done {
			buildRes.ExampleID = example.ID
			buildRes.Language = example.Language
			return finish(buildRes)
		}
	}

	argv := recipe.Argv
	if recipe.ArgvTakesFile {
		argv = append(append([]string{}, recipe.Argv...), recipe.FileName)
	}

	exitCode, runErr := r.proc.Run(runCtx, ProcessSpec{
		Argv:   argv,
		Dir:    dir,
		Env:    env,
		Stdout: stdout,
		Stderr: stderr,
	})

	result.Output = stdout.String()
	result.ExitCode = exitCode

	switch {
	case errors.Is(timeoutCtx.Err(), context.DeadlineExceeded):
		result.Status = StatusError
		result.ErrorMessage = "Execution timed out"
		result.ExitCode = TimeoutExitCode

	case ctx.Err() != nil:
		result.Status = StatusError
		result.ErrorMessage = "execution canceled"

	case runErr != nil && !stdout.Truncated() && !stderr.Truncated():
		// Spawn failure: missing interpreter, permission error. Never
		// retried here; retries are a caller concern.
		result.Status = StatusError
		result.ErrorMessage = runErr.Error()

	case stdout.Truncated() || stderr.Truncated():
		result = classifyTruncated(result, example)

	case example.HasExpectation():
		result = classifyExpectation(result, example)

	case exitCode == 0:
		result.Status = StatusPassed

	default:
		result.Status = StatusError
		result.ErrorMessage = strings.TrimSpace(stderr.String())
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("process exited with code %d", exitCode)
		}
	}

	r.logger.Debug("example executed",
		zap.String("example_id", example.ID),
		zap.String("language", string(example.Language)),
		zap.String("status", string(result.Status)),
		zap.Int("exit_code", result.ExitCode))

	return finish(result)
}

// runBuildStep runs a recipe's compile step. The second return value is
// true when the build settled the example's outcome and execution must not
// proceed.
func (r *Runner) runBuildStep(runCtx, timeoutCtx context.Context, dir string, env []string, recipe language.Recipe, stderr *capWriter) (ExecutionResult, bool) {
	argv := append(append([]string{}, recipe.BuildArgv...), recipe.FileName)
	buildOut := newCapWriter(r.outputLimit, nil)

	exitCode, err := r.proc.Run(runCtx, ProcessSpec{
		Argv:   argv,
		Dir:    dir,
		Env:    env,
		Stdout: buildOut,
		Stderr: stderr,
	})

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return ExecutionResult{
			Status:       StatusError,
			ErrorMessage: "Execution timed out",
			ExitCode:     TimeoutExitCode,
		}, true
	}
	if err != nil {
		return ExecutionResult{
			Status:       StatusError,
			ErrorMessage: err.Error(),
			ExitCode:     -1,
		}, true
	}
	if exitCode != 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("build failed with code %d", exitCode)
		}
		return ExecutionResult{
			Status:       StatusError,
			ErrorMessage: msg,
			ExitCode:     exitCode,
		}, true
	}
	return ExecutionResult{}, false
}

// classifyExpectation compares trimmed stdout against the expectation.
// The comparison is strict equality, not fuzzy matching.
func classifyExpectation(result ExecutionResult, example extractor.CodeExample) ExecutionResult {
	actual := strings.TrimSpace(result.Output)
	expected := strings.TrimSpace(example.ExpectedOutput)
	if actual == expected {
		result.Status = StatusPassed
		return result
	}
	result.Status = StatusFailed
	result.ErrorMessage = fmt.Sprintf("expected output %q, got %q", expected, actual)
	return result
}

// classifyTruncated settles an example whose output hit the ceiling. With
// no expectation, truncation implies the output is incomplete and cannot
// prove success.
func classifyTruncated(result ExecutionResult, example extractor.CodeExample) ExecutionResult {
	if example.HasExpectation() {
		return classifyExpectation(result, example)
	}
	result.Status = StatusError
	result.ErrorMessage = "Output exceeded size limit"
	return result
}

// buildEnv assembles the minimized, explicit child environment. Only PATH
// survives from the parent; HOME and TMPDIR point into the sandbox so the
// example cannot escape into the real home directory.
func buildEnv(dir string, recipe language.Recipe) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"LANG=C.UTF-8",
		"LC_ALL=C.UTF-8",
		"HOME=" + dir,
		"TMPDIR=" + dir,
	}

	keys := make([]string, 0, len(recipe.Env))
	for k := range recipe.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+strings.ReplaceAll(recipe.Env[k], "${SANDBOX}", dir))
	}
	return env
}
