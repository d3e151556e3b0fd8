// Package pip wraps the operator's Python environment: interpreter
// resolution, installed-distribution enumeration, and the retrying install
// procedure that shells out to pip.
package pip

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

var (
	// ErrExit reports a subprocess that ran and returned a non-zero status.
	ErrExit = errors.New("command exited with non-zero status")
	// ErrTimeout reports a subprocess that was killed after exceeding its
	// wall-clock budget.
	ErrTimeout = errors.New("command timed out")
)

// Result captures a finished subprocess invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one subprocess and blocks until it exits or the timeout
// elapses. Implementations must return ErrExit for non-zero exits and
// ErrTimeout for deadline kills; any other error means the process could
// not be started or was torn down unexpectedly.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

type execRunner struct{}

// NewRunner returns the production Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, ErrTimeout
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, ErrExit
	}
	return result, err
}
