// Package execute runs external toolchain commands with a bounded deadline.
package execute

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ExitTimeout is the sentinel exit status reported when a command exceeds
// its deadline. No real process can exit with a negative status, so callers
// can tell a timeout apart from any tool-reported failure.
const ExitTimeout = -1

// TimeoutMarker is the stderr payload of a timed-out Result.
const TimeoutMarker = "Timeout"

// DefaultTimeout bounds a single command when no other deadline is configured.
const DefaultTimeout = 10 * time.Second

// Result holds the captured streams and exit status of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Executor runs a command to completion.
//
// Implementations never report process-level failure as an error: a nonzero
// exit, a missing executable, and a timeout are all ordinary Results. The
// error return is reserved for faults in the executor itself.
type Executor interface {
	Run(ctx context.Context, argv []string, stdin string) (Result, error)
}

// OSExecutor spawns real processes, each bounded by a fixed wall-clock
// deadline. A command that outlives the deadline is killed together with
// its process group and reported as a timeout Result.
type OSExecutor struct {
	Timeout time.Duration
}

// NewOSExecutor returns an executor with the given per-command deadline.
// A zero or negative timeout falls back to DefaultTimeout.
func NewOSExecutor(timeout time.Duration) *OSExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OSExecutor{Timeout: timeout}
}

// Run executes argv[0] with the remaining elements as arguments, feeding
// stdin (if non-empty) to the process and capturing both output streams.
func (e *OSExecutor) Run(ctx context.Context, argv []string, stdin string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("execute: empty argument vector")
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	// Don't wait forever on pipes held open by orphaned grandchildren.
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{Stderr: TimeoutMarker, ExitCode: ExitTimeout, TimedOut: true}, nil
	}

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}, nil
}

// exitCode maps a cmd.Run error to an exit status. A command that could not
// start is indistinguishable from one that ran and failed; callers only see
// the status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitStatusFromError(exitErr); ok {
			return code
		}
		return 1
	}
	if isCommandNotFoundError(err) {
		return 127
	}
	return 1
}

// isCommandNotFoundError checks if the error indicates the command was not
// found, including platform-specific string fallbacks.
func isCommandNotFoundError(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	if strings.Contains(errStr, "executable file not found") {
		return true
	}
	if runtime.GOOS != "windows" && strings.Contains(errStr, "no such file or directory") {
		return true
	}
	return false
}
