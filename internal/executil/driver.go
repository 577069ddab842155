package executil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Status classifies the outcome of one solution invocation.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFailed      Status = "failed"      // non-zero exit
	StatusCrashed     Status = "crashed"     // killed by signal
	StatusUnavailable Status = "unavailable" // missing or unspawnable executable
	StatusTimedOut    Status = "timeout"     // enforced timeout exceeded
)

// Outcome is the captured result of one invocation. Immutable once
// returned; the caller owns it.
type Outcome struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Status   Status
	Err      string
	Duration time.Duration
}

func (o *Outcome) OK() bool {
	return o.Status == StatusOK
}

// Answer is the solution's printed answer: stdout with surrounding
// whitespace trimmed.
func (o *Outcome) Answer() string {
	return strings.TrimSpace(string(o.Stdout))
}

// Driver invokes solution binaries, one child process per run. No state
// is shared between invocations.
type Driver struct {
	// Timeout caps a single run. Zero means no enforced timeout.
	Timeout time.Duration
	// Args are forwarded verbatim to every invocation.
	Args []string
}

// Run executes the binary at path once, capturing stdout, stderr, exit
// status and wall-clock duration. The duration covers process start to
// exit only. Failures are reported through the Outcome status, never
// retried.
func (d *Driver) Run(ctx context.Context, path string) *Outcome {
	runCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, path, d.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// The solution gets its own process group so that cancellation kills
	// everything it spawned, not just the direct child. WaitDelay keeps
	// Wait from blocking on pipes an orphaned grandchild inherited.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = time.Second

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &Outcome{
			Status: StatusUnavailable,
			Err:    err.Error(),
		}
	}
	err := cmd.Wait()
	elapsed := time.Since(start)

	if runCtx.Err() != nil || errors.Is(err, exec.ErrWaitDelay) {
		// Sweep anything still alive in the solution's process group.
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		// The solution itself exited zero; only a stray pipe holder
		// kept Wait from returning sooner.
		err = nil
	}

	o := &Outcome{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: elapsed,
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		o.Status = StatusTimedOut
		o.Err = "run timed out after " + elapsed.Round(time.Millisecond).String()
	case err == nil:
		o.Status = StatusOK
	case o.ExitCode == -1:
		o.Status = StatusCrashed
		o.Err = err.Error()
	default:
		o.Status = StatusFailed
		o.Err = err.Error()
	}
	return o
}
