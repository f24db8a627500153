package subproc

// Listener receives lifecycle and I/O-readiness events from a Process.
//
// Callbacks are dispatched synchronously, one at a time, on whichever
// goroutine is driving the Process (a Poll call or one of the WaitFor*
// adapters). Implementations must not call a WaitFor* method on the same
// Process from inside a callback; non-blocking calls such as the read,
// write and close operations are fine and are the usual way to drain a
// stream when its readiness callback fires.
//
// Embed NopListener to implement only the events of interest:
//
//	type echoListener struct {
//	    subproc.NopListener
//	    proc *subproc.Process
//	}
//
//	func (l *echoListener) StandardOutputAvailable() {
//	    buf := make([]byte, 4096)
//	    for {
//	        n := l.proc.ReadStandardOutput(buf)
//	        if n == 0 {
//	            return
//	        }
//	        os.Stdout.Write(buf[:n])
//	    }
//	}
//
// The Process holds the listener by reference and never assumes ownership;
// the caller keeps it alive for as long as the Process may dispatch to it.
type Listener interface {
	// Started fires once per run, when the backend confirms the child
	// exists.
	Started()

	// Finished fires exactly once per run, after the child has exited and
	// its exit state has been recorded. It is never dispatched before
	// Started for the same run.
	Finished(status ExitStatus, code uint32)

	// StandardOutputAvailable fires on each transition of the stdout
	// channel from no data to some data. Edge-triggered: it does not
	// repeat while unread data remains.
	StandardOutputAvailable()

	// StandardErrorAvailable is the stderr counterpart of
	// StandardOutputAvailable.
	StandardErrorAvailable()

	// StandardInputAvailable fires once per transition of the stdin
	// channel from full to has-room, after a write returned a short
	// count. It will not fire again until another short write occurs.
	StandardInputAvailable()

	// ErrorOccurred reports an asynchronous failure: a *FailedToStartError
	// when the child could not be created, or a *PipeError for an
	// unexpected stream failure.
	ErrorOccurred(err error)

	// ExceptionOccurred reports a panic recovered from another callback,
	// wrapped in a *CallbackPanicError. A panic raised here is swallowed.
	ExceptionOccurred(err error)
}

// NopListener implements every Listener method as a no-op. Embed it to
// pick out only the callbacks a listener cares about.
type NopListener struct{}

// Compile-time verification that NopListener implements Listener.
var _ Listener = NopListener{}

func (NopListener) Started() {}

func (NopListener) Finished(status ExitStatus, code uint32) {}

func (NopListener) StandardOutputAvailable() {}

func (NopListener) StandardErrorAvailable() {}

func (NopListener) StandardInputAvailable() {}

func (NopListener) ErrorOccurred(err error) {}

func (NopListener) ExceptionOccurred(err error) {}
