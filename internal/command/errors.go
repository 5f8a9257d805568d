package command

import (
	"errors"
	"fmt"
)

// Sentinel errors for typed error checking.
var (
	ErrTimeout          = errors.New("command timed out")
	ErrNotFound         = errors.New("executable not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRejected         = errors.New("command rejected by validation")
)

// Sentinel exit codes reported when the process never produced a real one.
// 126 and 127 mirror what POSIX shells report for the same conditions.
const (
	ExitTimeout          = -1
	ExitPermissionDenied = 126
	ExitNotFound         = 127
)

// PipelineError wraps errors with request context.
type PipelineError struct {
	RequestID string
	Op        string // the pipeline stage that failed
	Err       error
}

func (e *PipelineError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("request %s: %s: %s", e.RequestID, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error is an execution timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRejected returns true if the error is a validation rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
