package backend

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const (
	// defaultStdinBufferSize bounds the bytes accepted ahead of the child
	// reading them.
	defaultStdinBufferSize = 64 * 1024
	// defaultStdioBufferSize bounds each of the stdout and stderr buffers.
	defaultStdioBufferSize = 1024 * 1024
	// readChunkSize is the per-read transfer size of the output pumps.
	readChunkSize = 32 * 1024
)

// ExecBackend spawns children with os/exec.
type ExecBackend struct{}

// Compile-time verification that ExecBackend implements Backend.
var _ Backend = (*ExecBackend)(nil)

// NewExec returns the default os/exec backed Backend.
func NewExec() *ExecBackend {
	return &ExecBackend{}
}

// Spawn launches the child described by spec and returns a Handle servicing
// its standard streams. The returned handle has already posted EventStarted.
func (*ExecBackend) Spawn(spec Spec) (Handle, error) {
	log := spec.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	stdinSize := spec.StdinBufferSize
	if stdinSize <= 0 {
		stdinSize = defaultStdinBufferSize
	}

	stdioSize := spec.StdioBufferSize
	if stdioSize <= 0 {
		stdioSize = defaultStdioBufferSize
	}

	//nolint:gosec // G204: launching caller-specified programs is this package's purpose
	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	setSysProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	h := &execHandle{
		log:    log.With("component", "exec_backend", "pid", cmd.Process.Pid),
		cmd:    cmd,
		queue:  newEventQueue(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	h.in = newInBuffer(stdinSize, func() {
		h.queue.post(Event{Type: EventStdinWritable})
	})
	h.out = newOutBuffer(stdioSize, func() {
		h.queue.post(Event{Type: EventStdoutReadable})
	})
	h.errOut = newOutBuffer(stdioSize, func() {
		h.queue.post(Event{Type: EventStderrReadable})
	})

	h.queue.post(Event{Type: EventStarted})

	h.reads.Add(2)
	h.eg = new(errgroup.Group)
	h.eg.Go(func() error { return h.readPump(Stdout, stdout, h.out) })
	h.eg.Go(func() error { return h.readPump(Stderr, stderr, h.errOut) })
	h.eg.Go(h.writePump)
	h.eg.Go(h.waitChild)

	h.log.Debug("child process started")

	return h, nil
}

type execHandle struct {
	log   *slog.Logger
	cmd   *exec.Cmd
	queue *eventQueue

	in     *inBuffer
	out    *outBuffer
	errOut *outBuffer

	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	pipeMu       sync.Mutex
	stdoutClosed bool
	stderrClosed bool

	stdinOnce sync.Once

	killed atomic.Bool
	exited atomic.Bool

	reads sync.WaitGroup
	eg    *errgroup.Group

	releaseOnce sync.Once
	releaseErr  error
}

func (h *execHandle) TakeEvents() []Event {
	return h.queue.take()
}

func (h *execHandle) Ready() <-chan struct{} {
	return h.queue.ready()
}

func (h *execHandle) Write(p []byte) (int, error) {
	return h.in.offer(p), nil
}

func (h *execHandle) Read(s Stream, p []byte) (int, error) {
	switch s {
	case Stdout:
		return h.out.take(p), nil
	case Stderr:
		return h.errOut.take(p), nil
	default:
		return 0, fmt.Errorf("stream %s is not readable", s)
	}
}

func (h *execHandle) ClosePipe(s Stream) error {
	switch s {
	case Stdin:
		// The write pump flushes buffered bytes, then closes the pipe so
		// the child observes EOF.
		h.in.closeDrain()

		return nil

	case Stdout:
		h.pipeMu.Lock()
		if h.stdoutClosed {
			h.pipeMu.Unlock()

			return nil
		}

		h.stdoutClosed = true
		h.pipeMu.Unlock()

		h.out.close()

		return h.stdout.Close()

	case Stderr:
		h.pipeMu.Lock()
		if h.stderrClosed {
			h.pipeMu.Unlock()

			return nil
		}

		h.stderrClosed = true
		h.pipeMu.Unlock()

		h.errOut.close()

		return h.stderr.Close()

	default:
		return fmt.Errorf("unknown stream %d", s)
	}
}

func (h *execHandle) Terminate() error {
	return terminateProcess(h.cmd)
}

func (h *execHandle) Kill() error {
	h.killed.Store(true)

	return killProcess(h.cmd)
}

func (h *execHandle) Pid() int {
	return h.cmd.Process.Pid
}

// Release tears the handle down on every path: kills a still-running child,
// closes all streams and reclaims the pump goroutines. Idempotent.
func (h *execHandle) Release() error {
	h.releaseOnce.Do(func() {
		if !h.exited.Load() {
			h.killed.Store(true)
			_ = killProcess(h.cmd)
		}

		h.in.closeNow()
		h.out.close()
		h.errOut.close()

		h.closeStdinPipe()
		_ = h.stdout.Close()
		_ = h.stderr.Close()

		h.releaseErr = h.eg.Wait()

		h.log.Debug("handle released")
	})

	return h.releaseErr
}

// readPump copies one output pipe into its buffer until EOF. A full buffer
// blocks the pump, which in turn backpressures the child through the OS pipe.
func (h *execHandle) readPump(s Stream, r io.Reader, buf *outBuffer) error {
	defer h.reads.Done()

	chunk := make([]byte, readChunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if appendErr := buf.append(chunk[:n]); appendErr != nil {
				// Buffer released; discard the tail.
				return nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
				return nil
			}

			h.log.Debug("read pump failed", "stream", s.String(), "error", err)
			h.queue.post(Event{Type: EventIOError, Stream: s, Err: err})

			return nil
		}
	}
}

// writePump drains the stdin buffer into the child. It closes the pipe once
// the buffer reports shutdown so the child observes EOF after the tail.
func (h *execHandle) writePump() error {
	for {
		batch, done := h.in.next()
		if done {
			h.closeStdinPipe()

			return nil
		}

		if _, err := h.stdin.Write(batch); err != nil {
			h.in.closeNow()
			h.closeStdinPipe()

			if !h.expectedStdinError(err) {
				h.log.Debug("write pump failed", "error", err)
				h.queue.post(Event{Type: EventIOError, Stream: Stdin, Err: err})
			}

			return nil
		}
	}
}

// expectedStdinError reports whether a stdin write failure is part of normal
// shutdown rather than a fault worth surfacing: the pipe was closed locally,
// or the child is gone.
func (h *execHandle) expectedStdinError(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		h.exited.Load()
}

// waitChild reaps the child and posts EventExited. It runs after both output
// pumps hit EOF, per the os/exec pipe contract, so no buffered output is lost
// ahead of the exit notification.
func (h *execHandle) waitChild() error {
	h.reads.Wait()

	err := h.cmd.Wait()
	h.exited.Store(true)

	// Wait closed the parent pipe ends; stop an idle stdin pump.
	h.in.closeNow()

	var (
		code    uint32
		crashed bool
	)

	if state := h.cmd.ProcessState; state != nil {
		code, crashed = decodeExit(state, h.killed.Load())
	} else {
		// Wait failed before the child was reaped; report a crash with no
		// usable code rather than inventing a normal exit.
		h.log.Debug("wait failed without process state", "error", err)

		crashed = true
	}

	h.log.Debug("child process exited", "exit_code", code, "crashed", crashed)
	h.queue.post(Event{Type: EventExited, ExitCode: code, Crashed: crashed})

	return nil
}

func (h *execHandle) closeStdinPipe() {
	h.stdinOnce.Do(func() {
		_ = h.stdin.Close()
	})
}
