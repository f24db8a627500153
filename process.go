package subproc

import (
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/procwire/subproc-go/internal/backend"
	errs "github.com/procwire/subproc-go/internal/errors"
)

// Process launches and supervises a single child process, exposing its
// three standard streams through non-blocking operations and a
// listener-driven event model.
//
// A Process confines to one goroutine: all methods, including the WaitFor*
// adapters, must be called from the same goroutine, and listener callbacks
// are dispatched on it. Callers needing multi-goroutine access serialize
// externally. The Process itself starts no goroutines; the platform
// backend's internal pumps only enqueue events and never run caller code.
//
// The zero value is not usable; construct with New.
type Process struct {
	log     *slog.Logger
	backend backend.Backend

	// Configuration, frozen while a child is starting or running.
	program string
	args    []string
	env     []string
	dir     string

	stdinBufferSize int
	stdioBufferSize int

	listener Listener

	status  Status
	handle  backend.Handle
	pending []backend.Event

	runID  ulid.ULID
	runLog *slog.Logger

	stdin  pipe
	stdout pipe
	stderr pipe

	// runStarted and runFinished track the current (or most recent) run;
	// both reset on Start.
	runStarted  bool
	runFinished bool

	exitValid  bool
	exitStatus ExitStatus
	exitCode   uint32

	waiting  bool
	released bool
}

// New creates a Process in StatusNotRunning with the given options applied.
func New(opts ...Option) *Process {
	p := &Process{
		log:     NopLogger(),
		backend: backend.NewExec(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.log = p.log.With("component", "process")
	p.runLog = p.log

	return p
}

// ===== Configuration =====

// SetProgram sets the path of the program to execute.
// Configuration is mutable only while the process is not running.
func (p *Process) SetProgram(program string) error {
	if err := p.configurable(); err != nil {
		return err
	}

	p.program = program

	return nil
}

// SetArguments sets the argument list passed to the program.
// Configuration is mutable only while the process is not running.
func (p *Process) SetArguments(args ...string) error {
	if err := p.configurable(); err != nil {
		return err
	}

	p.args = slices.Clone(args)

	return nil
}

// SetEnvironment sets the child's environment as "KEY=VALUE" entries; nil
// inherits the parent environment.
// Configuration is mutable only while the process is not running.
func (p *Process) SetEnvironment(env []string) error {
	if err := p.configurable(); err != nil {
		return err
	}

	p.env = slices.Clone(env)

	return nil
}

// SetWorkingDirectory sets the child's working directory.
// Configuration is mutable only while the process is not running.
func (p *Process) SetWorkingDirectory(dir string) error {
	if err := p.configurable(); err != nil {
		return err
	}

	p.dir = dir

	return nil
}

// SetListener sets the listener receiving lifecycle and readiness events.
// Configuration is mutable only while the process is not running.
func (p *Process) SetListener(l Listener) error {
	if err := p.configurable(); err != nil {
		return err
	}

	p.listener = l

	return nil
}

func (p *Process) configurable() error {
	if p.status != StatusNotRunning {
		return errs.ErrAlreadyRunning
	}

	return nil
}

// ===== Lifecycle =====

// Start begins an asynchronous launch of the configured program.
//
// On success the status moves to StatusStarting immediately and to
// StatusRunning once the backend's confirmation has been pumped, at which
// point the listener's Started callback fires. A creation failure is
// reported through the listener as ErrorOccurred with a *FailedToStartError,
// the status returns to StatusNotRunning and no partial resources remain
// held. Start itself returns an error only when its precondition is
// violated: the process must not already be running.
func (p *Process) Start() error {
	if p.released {
		return errs.ErrProcessReleased
	}

	if p.status != StatusNotRunning {
		return errs.ErrAlreadyRunning
	}

	p.runID = ulid.Make()
	p.runLog = p.log.With("run_id", p.runID.String(), "program", p.program)

	p.status = StatusStarting
	p.runStarted = false
	p.runFinished = false
	p.stdin = pipe{}
	p.stdout = pipe{}
	p.stderr = pipe{}

	handle, err := p.backend.Spawn(backend.Spec{
		Program:         p.program,
		Args:            p.args,
		Env:             p.env,
		Dir:             p.dir,
		StdinBufferSize: p.stdinBufferSize,
		StdioBufferSize: p.stdioBufferSize,
		Log:             p.runLog,
	})
	if err != nil {
		p.status = StatusNotRunning
		p.runLog.Error("failed to start child process", "error", err)
		p.dispatch("ErrorOccurred", func(l Listener) {
			l.ErrorOccurred(&errs.FailedToStartError{Program: p.program, Err: err})
		})

		return nil
	}

	p.handle = handle
	p.runLog.Debug("child process launch requested", "pid", handle.Pid())

	return nil
}

// Terminate sends a cooperative stop request to a running child: SIGTERM on
// POSIX, a close request on Windows. The child may catch or ignore it, so
// termination is not guaranteed; the actual exit is observed later through
// Finished. No-op when the process is not running.
func (p *Process) Terminate() error {
	if p.status != StatusRunning || p.handle == nil {
		return nil
	}

	p.runLog.Debug("terminate requested")

	return p.handle.Terminate()
}

// Kill sends a forced, non-ignorable stop request to a running child:
// SIGKILL on POSIX, TerminateProcess on Windows. The actual exit is
// observed later through Finished. No-op when the process is not running.
func (p *Process) Kill() error {
	if p.status != StatusRunning || p.handle == nil {
		return nil
	}

	p.runLog.Debug("kill requested")

	return p.handle.Kill()
}

// Close releases the process: a still-running child is killed and every
// backend resource, including the three stream transports, is reclaimed.
// Idempotent and safe on every exit path; a closed Process cannot be
// restarted.
func (p *Process) Close() error {
	if p.released {
		return nil
	}

	p.released = true
	p.pending = nil

	if p.handle == nil {
		return nil
	}

	err := p.handle.Release()
	p.handle = nil
	p.status = StatusNotRunning
	p.stdin.closed, p.stdout.closed, p.stderr.closed = true, true, true

	return err
}

// ===== Accessors =====

// Status returns the current lifecycle state.
func (p *Process) Status() Status {
	return p.status
}

// ExitStatus reports how the last run ended. It is defined only once the
// process has returned to StatusNotRunning after a completed run; reading
// it earlier returns ErrNoCompletedRun.
func (p *Process) ExitStatus() (ExitStatus, error) {
	if p.status != StatusNotRunning || !p.exitValid {
		return 0, errs.ErrNoCompletedRun
	}

	return p.exitStatus, nil
}

// ExitCode reports the last run's exit code. Under ExitNormal it is the
// program's real exit code; under ExitCrash it is platform-defined (POSIX:
// terminating signal number; Windows: OS-reported exit code). Defined under
// the same conditions as ExitStatus.
func (p *Process) ExitCode() (uint32, error) {
	if p.status != StatusNotRunning || !p.exitValid {
		return 0, errs.ErrNoCompletedRun
	}

	return p.exitCode, nil
}

// Pid returns the operating-system identifier of the child, valid while a
// child exists.
func (p *Process) Pid() (int, error) {
	if p.handle == nil {
		return 0, errs.ErrNotRunning
	}

	return p.handle.Pid(), nil
}

// RunID returns the ULID assigned to the current or most recent run, or ""
// before the first Start. It correlates log records across runs.
func (p *Process) RunID() string {
	if p.runID == (ulid.ULID{}) {
		return ""
	}

	return p.runID.String()
}

// ===== Event pump =====

// Poll processes all pending backend events on the calling goroutine,
// dispatching the corresponding listener callbacks. It never blocks.
// Callers integrating the Process into their own loop alternate Poll with
// other work; callers using the WaitFor* adapters never need it.
func (p *Process) Poll() {
	for {
		e, ok := p.takeEvent()
		if !ok {
			return
		}

		p.handleEvent(e)
	}
}

// takeEvent returns the next backend event, refilling the local queue from
// the handle when empty. Events already taken keep draining even after the
// handle is gone.
func (p *Process) takeEvent() (backend.Event, bool) {
	if len(p.pending) == 0 && p.handle != nil {
		p.pending = p.handle.TakeEvents()
	}

	if len(p.pending) == 0 {
		return backend.Event{}, false
	}

	e := p.pending[0]
	p.pending = p.pending[1:]

	return e, true
}

func (p *Process) handleEvent(e backend.Event) {
	switch e.Type {
	case backend.EventStarted:
		p.status = StatusRunning
		p.runStarted = true
		p.runLog.Debug("child process running")
		p.dispatch("Started", func(l Listener) { l.Started() })

	case backend.EventExited:
		p.finishRun(e.ExitCode, e.Crashed)

	case backend.EventStdoutReadable:
		if p.status != StatusRunning || p.stdout.closed {
			return
		}

		p.stdout.ready = true
		p.dispatch("StandardOutputAvailable", func(l Listener) { l.StandardOutputAvailable() })

	case backend.EventStderrReadable:
		if p.status != StatusRunning || p.stderr.closed {
			return
		}

		p.stderr.ready = true
		p.dispatch("StandardErrorAvailable", func(l Listener) { l.StandardErrorAvailable() })

	case backend.EventStdinWritable:
		if p.status != StatusRunning || p.stdin.closed {
			return
		}

		p.stdin.ready = true
		p.dispatch("StandardInputAvailable", func(l Listener) { l.StandardInputAvailable() })

	case backend.EventIOError:
		if p.status != StatusRunning {
			return
		}

		p.dispatch("ErrorOccurred", func(l Listener) {
			l.ErrorOccurred(&errs.PipeError{Stream: e.Stream.String(), Err: e.Err})
		})
	}
}

// finishRun is the single place exit state becomes visible: it records the
// outcome, closes any still-open stream channels, returns the status to
// StatusNotRunning and dispatches Finished exactly once for the run.
func (p *Process) finishRun(code uint32, crashed bool) {
	handle := p.handle
	p.handle = nil

	p.exitValid = true
	p.exitCode = code

	if crashed {
		p.exitStatus = ExitCrash
	} else {
		p.exitStatus = ExitNormal
	}

	p.stdin.closed, p.stdout.closed, p.stderr.closed = true, true, true
	p.stdin.ready, p.stdout.ready, p.stderr.ready = false, false, false

	p.status = StatusNotRunning
	p.runFinished = true

	if handle != nil {
		_ = handle.Release()
	}

	p.runLog.Info("child process finished",
		"exit_status", p.exitStatus.String(),
		"exit_code", code,
	)
	p.dispatch("Finished", func(l Listener) { l.Finished(p.exitStatus, p.exitCode) })
}

// ===== Dispatch =====

// dispatch invokes one listener capability, containing any panic it raises.
// A contained panic is reported once through ExceptionOccurred; a panic
// inside ExceptionOccurred itself is swallowed so the driving loop never
// crashes.
func (p *Process) dispatch(name string, call func(Listener)) {
	l := p.listener
	if l == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.runLog.Error("listener callback panicked", "callback", name, "panic", r)
			p.reportException(l, &errs.CallbackPanicError{Callback: name, Value: r})
		}
	}()

	call(l)
}

func (p *Process) reportException(l Listener, cause *errs.CallbackPanicError) {
	defer func() {
		if r := recover(); r != nil {
			p.runLog.Error("ExceptionOccurred panicked, swallowing", "panic", r)
		}
	}()

	l.ExceptionOccurred(cause)
}
