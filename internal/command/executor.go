package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"netcopilot/internal/config"
)

// Result captures everything a single bounded execution produced. Failure
// modes are encoded in the fields, never surfaced as errors: the explanation
// layer needs a Result even when the command could not run.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Executor runs accepted commands as isolated, timeout-bounded subprocesses.
type Executor struct {
	timeout time.Duration
	grace   time.Duration
}

func NewExecutor(cfg config.ExecConfig) *Executor {
	return &Executor{
		timeout: cfg.DefaultTimeout,
		grace:   cfg.GracePeriod,
	}
}

// Execute runs text as a child process and captures both output streams.
// The text is split on whitespace into an argument vector; no shell is ever
// involved, so the raw string cannot reach an interpreter. Callers must only
// pass text that an accepted Verdict has cleared. Execution is never retried.
func (e *Executor) Execute(ctx context.Context, text string) *Result {
	argv := strings.Fields(text)
	res := &Result{Command: text}
	if len(argv) == 0 {
		res.ExitCode = ExitNotFound
		res.Stderr = "empty command"
		return res
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...) // #nosec G204 -- argv passed validation, no shell involved
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	// On timeout send SIGTERM first; the kernel delivers SIGKILL if the
	// process is still alive after the grace period.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = e.grace

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	switch {
	case err == nil:
		res.ExitCode = 0

	case execCtx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		res.ExitCode = ExitTimeout
		if res.Stderr == "" {
			res.Stderr = fmt.Sprintf("command timed out after %s", e.timeout)
		}
		log.Warn().
			Str("command", argv[0]).
			Dur("timeout", e.timeout).
			Msg("execution timed out, process terminated")

	case isNotFound(err):
		res.ExitCode = ExitNotFound
		res.Stderr = fmt.Sprintf("command not found: %s", argv[0])

	case isPermissionDenied(err):
		res.ExitCode = ExitPermissionDenied
		res.Stderr = fmt.Sprintf("permission denied: %s", argv[0])

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = ExitTimeout
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}

	return res
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, syscall.ENOENT)
}

func isPermissionDenied(err error) bool {
	return errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM)
}

// Failed reports whether the result represents any execution failure mode.
func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// FailureError maps sentinel exit codes back to typed errors for callers that
// branch on failure kind.
func (r *Result) FailureError() error {
	switch {
	case r.TimedOut:
		return ErrTimeout
	case r.ExitCode == ExitNotFound:
		return ErrNotFound
	case r.ExitCode == ExitPermissionDenied:
		return ErrPermissionDenied
	default:
		return nil
	}
}
