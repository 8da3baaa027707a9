package sandbox

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// ProcessSpec describes one subprocess invocation inside a sandbox.
type ProcessSpec struct {
	// Argv is the command and its arguments. Argv[0] is resolved on PATH.
	Argv []string

	// Dir is the working directory, always the sandbox directory.
	Dir string

	// Env is the complete, explicit environment. The parent process's
	// ambient environment is never inherited.
	Env []string

	// Stdout and Stderr receive the process output streams.
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessRunner spawns sandbox subprocesses. It exists as a seam so tests
// can exercise the runner without real interpreters.
type ProcessRunner interface {
	// Run executes the spec and waits for exit. A non-zero exit is
	// reported through the exit code with a nil error; a non-nil error
	// means the process could not be spawned or was torn down by context
	// cancellation before producing an exit status.
	Run(ctx context.Context, spec ProcessSpec) (exitCode int, err error)
}

// FileSystem abstracts the sandbox directory operations.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealProcessRunner implements ProcessRunner with os/exec. Processes are
// placed in their own process group and force-killed as a group on
// cancellation so runaway children cannot outlive their example.
type RealProcessRunner struct{}

// Run executes the given spec.
func (RealProcessRunner) Run(ctx context.Context, spec ProcessSpec) (int, error) {
	if len(spec.Argv) == 0 {
		return 0, errors.New("no command provided")
	}

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...) //nolint:gosec // Argv comes from the fixed recipe table
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	cmd.SysProcAttr = sysProcAttr()
	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// RealFileSystem implements FileSystem using actual file system operations.
type RealFileSystem struct{}

func (RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
