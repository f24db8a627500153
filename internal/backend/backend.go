package backend

import "log/slog"

// Stream identifies one of the child's standard streams.
type Stream int

const (
	// Stdin is the child's standard input, written by the caller.
	Stdin Stream = iota
	// Stdout is the child's standard output, read by the caller.
	Stdout
	// Stderr is the child's standard error, read by the caller.
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// EventType identifies what the backend observed.
type EventType int

const (
	// EventStarted reports that the child process exists.
	EventStarted EventType = iota
	// EventExited reports that the child process has exited. It is posted
	// exactly once per spawn, after the output streams have drained.
	EventExited
	// EventStdoutReadable reports a no-data to some-data transition on the
	// stdout buffer. Edge-triggered: it does not repeat while data remains.
	EventStdoutReadable
	// EventStderrReadable is the stderr counterpart of EventStdoutReadable.
	EventStderrReadable
	// EventStdinWritable reports a full to has-room transition on the stdin
	// buffer following a short write. Edge-triggered.
	EventStdinWritable
	// EventIOError reports an unexpected failure on one of the streams. It
	// does not imply the child has exited.
	EventIOError
)

// Event describes a single backend observation. ExitCode and Crashed are
// meaningful only for EventExited; Stream and Err only for EventIOError.
type Event struct {
	Type     EventType
	ExitCode uint32
	Crashed  bool
	Stream   Stream
	Err      error
}

// Spec carries the configuration for one spawn.
type Spec struct {
	Program string
	Args    []string
	// Env holds "KEY=VALUE" entries. A nil Env inherits the parent
	// environment, matching os/exec.
	Env []string
	Dir string

	// StdinBufferSize bounds the bytes accepted ahead of the child reading
	// them; zero selects the default.
	StdinBufferSize int
	// StdioBufferSize bounds each of the stdout and stderr buffers; zero
	// selects the default.
	StdioBufferSize int

	Log *slog.Logger
}

// Handle is a live spawned child. All methods except the internal pump
// machinery are intended to be called from the single goroutine driving
// the owning Process.
type Handle interface {
	// TakeEvents drains and returns all pending events in posting order.
	TakeEvents() []Event

	// Ready returns the doorbell channel, signalled whenever new events
	// are posted. Receivers must drain TakeEvents after each signal.
	Ready() <-chan struct{}

	// Write queues up to len(p) bytes for the child's stdin and returns
	// how many were accepted. A short count means the stdin buffer is
	// full; EventStdinWritable will follow once it drains.
	Write(p []byte) (int, error)

	// Read copies buffered bytes from the given output stream into p and
	// returns the count. Zero means no data is currently buffered.
	Read(s Stream, p []byte) (int, error)

	// ClosePipe releases the given stream. Idempotent. Closing Stdin
	// flushes buffered bytes to the child before the peer sees EOF.
	ClosePipe(s Stream) error

	// Terminate delivers a cooperative stop request to the child.
	Terminate() error

	// Kill delivers a forced, non-ignorable stop request to the child.
	Kill() error

	// Pid returns the operating-system identifier of the child.
	Pid() int

	// Release tears down the handle: kills a still-running child, closes
	// every stream and reclaims the pump goroutines. Idempotent.
	Release() error
}

// Backend creates child processes.
type Backend interface {
	Spawn(spec Spec) (Handle, error)
}
