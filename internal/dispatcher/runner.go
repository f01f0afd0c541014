package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Invocation is one scanner subprocess execution.
type Invocation struct {
	Binary string
	Args   []string
}

// RunResult carries a completed subprocess's output. Stdout is kept even on
// a non-zero exit: the scanner signals per-target conditions through its
// exit status while still emitting valid findings.
type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes scanner invocations. The default implementation shells
// out; tests substitute scripted results without a real binary.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*RunResult, error)
}

// execRunner runs invocations through os/exec.
type execRunner struct{}

// NewExecRunner returns the Runner backed by real subprocesses.
func NewExecRunner() Runner {
	return execRunner{}
}

// Run executes the invocation and waits for it. A process that started and
// exited non-zero is not an error here; only a failure to launch (or a kill
// before any exit status) is.
func (execRunner) Run(ctx context.Context, inv Invocation) (*RunResult, error) {
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result := &RunResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, err
	}
	return result, nil
}
