package errors

import (
	"errors"
	"fmt"
)

// SubprocError is the base interface for all subproc errors.
type SubprocError interface {
	error
	IsSubprocError() bool
}

// Compile-time verification that all error types implement SubprocError.
var (
	_ SubprocError = (*FailedToStartError)(nil)
	_ SubprocError = (*PipeError)(nil)
	_ SubprocError = (*CallbackPanicError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotRunning indicates an operation that requires a running child
	// was invoked while no child is running.
	ErrNotRunning = errors.New("process not running")

	// ErrAlreadyRunning indicates a configuration mutation or Start was
	// attempted while a child is starting or running.
	ErrAlreadyRunning = errors.New("process already running: configuration is frozen until it exits")

	// ErrNoCompletedRun indicates ExitStatus or ExitCode was read before
	// any run has completed.
	ErrNoCompletedRun = errors.New("no completed run: exit state is undefined")

	// ErrProcessReleased indicates the process has been closed and cannot
	// be restarted.
	ErrProcessReleased = errors.New("process released: create a new one with New()")
)

// FailedToStartError indicates the child process could not be created.
type FailedToStartError struct {
	Program string
	Err     error
}

func (e *FailedToStartError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Program, e.Err)
}

func (e *FailedToStartError) Unwrap() error {
	return e.Err
}

// IsSubprocError implements SubprocError.
func (e *FailedToStartError) IsSubprocError() bool { return true }

// PipeError indicates an unexpected I/O failure on one of the child's
// standard streams. It does not imply the child has exited.
type PipeError struct {
	Stream string
	Err    error
}

func (e *PipeError) Error() string {
	return fmt.Sprintf("%s pipe: %v", e.Stream, e.Err)
}

func (e *PipeError) Unwrap() error {
	return e.Err
}

// IsSubprocError implements SubprocError.
func (e *PipeError) IsSubprocError() bool { return true }

// CallbackPanicError wraps a panic recovered from a listener callback.
// The Value field preserves the original panic value.
type CallbackPanicError struct {
	Callback string
	Value    any
}

func (e *CallbackPanicError) Error() string {
	return fmt.Sprintf("listener %s panicked: %v", e.Callback, e.Value)
}

// Unwrap returns the panic value when it was itself an error.
func (e *CallbackPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// IsSubprocError implements SubprocError.
func (e *CallbackPanicError) IsSubprocError() bool { return true }
