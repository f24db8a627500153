package subproc

import "github.com/procwire/subproc-go/internal/errors"

// Re-export error types from the internal package

// SubprocError is the base interface for all subproc errors.
type SubprocError = errors.SubprocError

// FailedToStartError indicates the child process could not be created.
type FailedToStartError = errors.FailedToStartError

// PipeError indicates an unexpected I/O failure on one of the child's
// standard streams.
type PipeError = errors.PipeError

// CallbackPanicError wraps a panic recovered from a listener callback.
type CallbackPanicError = errors.CallbackPanicError

// Re-export sentinel errors from the internal package.
var (
	// ErrNotRunning indicates an operation that requires a running child
	// was invoked while no child is running.
	ErrNotRunning = errors.ErrNotRunning

	// ErrAlreadyRunning indicates a configuration mutation or Start was
	// attempted while a child is starting or running.
	ErrAlreadyRunning = errors.ErrAlreadyRunning

	// ErrNoCompletedRun indicates ExitStatus or ExitCode was read before
	// any run has completed.
	ErrNoCompletedRun = errors.ErrNoCompletedRun

	// ErrProcessReleased indicates the process has been closed and cannot
	// be restarted.
	ErrProcessReleased = errors.ErrProcessReleased
)
