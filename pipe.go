package subproc

import (
	"github.com/procwire/subproc-go/internal/backend"
	errs "github.com/procwire/subproc-go/internal/errors"
)

// pipe tracks the caller-visible state of one stdio channel: whether it has
// been closed this run, and whether a readiness notification has been
// signaled but not yet consumed by a caller operation.
type pipe struct {
	ready  bool
	closed bool
}

// WriteStandardInput queues bytes for the child's standard input and
// returns how many were accepted, which may be less than len(data),
// including zero. A short count is not an error: the transport's buffer is
// full, the caller owns the remainder and retries after the listener's
// StandardInputAvailable fires (exactly once per full-to-has-room
// transition). No-op returning zero when the process is not running or the
// channel is closed.
func (p *Process) WriteStandardInput(data []byte) int {
	if p.status != StatusRunning || p.stdin.closed || p.handle == nil {
		return 0
	}

	p.stdin.ready = false

	n, err := p.handle.Write(data)
	if err != nil {
		p.dispatch("ErrorOccurred", func(l Listener) {
			l.ErrorOccurred(&errs.PipeError{Stream: backend.Stdin.String(), Err: err})
		})
	}

	return n
}

// ReadStandardOutput copies currently buffered stdout bytes into buf and
// returns the count. Zero means no data is buffered right now; it is not
// end-of-stream. The call never blocks: the listener's
// StandardOutputAvailable fires when data next arrives. No-op returning
// zero when the process is not running or the channel is closed.
func (p *Process) ReadStandardOutput(buf []byte) int {
	return p.readStream(&p.stdout, backend.Stdout, buf)
}

// ReadStandardError is the stderr counterpart of ReadStandardOutput.
func (p *Process) ReadStandardError(buf []byte) int {
	return p.readStream(&p.stderr, backend.Stderr, buf)
}

func (p *Process) readStream(ch *pipe, s backend.Stream, buf []byte) int {
	if p.status != StatusRunning || ch.closed || p.handle == nil {
		return 0
	}

	ch.ready = false

	n, err := p.handle.Read(s, buf)
	if err != nil {
		p.dispatch("ErrorOccurred", func(l Listener) {
			l.ErrorOccurred(&errs.PipeError{Stream: s.String(), Err: err})
		})
	}

	return n
}

// CloseStandardInput closes the child's standard input so it observes
// end-of-stream once already-accepted bytes have drained. Idempotent;
// no-op when the process is not running or the channel is already closed.
func (p *Process) CloseStandardInput() {
	p.closeStream(&p.stdin, backend.Stdin)
}

// CloseStandardOutput stops servicing the child's standard output.
// Idempotent; no-op when the process is not running or the channel is
// already closed.
func (p *Process) CloseStandardOutput() {
	p.closeStream(&p.stdout, backend.Stdout)
}

// CloseStandardError stops servicing the child's standard error.
// Idempotent; no-op when the process is not running or the channel is
// already closed.
func (p *Process) CloseStandardError() {
	p.closeStream(&p.stderr, backend.Stderr)
}

func (p *Process) closeStream(ch *pipe, s backend.Stream) {
	if p.status != StatusRunning || ch.closed || p.handle == nil {
		return
	}

	ch.closed = true
	ch.ready = false

	if err := p.handle.ClosePipe(s); err != nil {
		p.dispatch("ErrorOccurred", func(l Listener) {
			l.ErrorOccurred(&errs.PipeError{Stream: s.String(), Err: err})
		})
	}
}
