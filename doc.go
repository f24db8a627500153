// Package subproc provides asynchronous, cross-platform control of a child
// process: creation, lifecycle and the three standard streams, behind a
// non-blocking, listener-driven API with blocking adapters on top.
//
// It is aimed at tooling, such as language-server hosts, that must launch
// helper processes, feed and drain their stdio without stalling a main
// loop, and observe exit status reliably on POSIX and Windows.
//
// # Basic Usage
//
// Configure a Process, start it and wait for completion:
//
//	proc := subproc.New(
//	    subproc.WithProgram("echo"),
//	    subproc.WithArguments("hi"),
//	)
//	defer proc.Close()
//
//	if err := proc.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	if !proc.WaitForStarted(ctx) {
//	    log.Fatal("child did not start")
//	}
//	if !proc.WaitForFinished(ctx) {
//	    log.Fatal("child did not finish")
//	}
//
//	status, _ := proc.ExitStatus()
//	code, _ := proc.ExitCode()
//	fmt.Println(status, code)
//
// # Listener-Driven I/O
//
// All lifecycle and readiness events flow through a Listener. Embed
// NopListener and implement only the callbacks of interest; drain a stream
// when its readiness callback fires:
//
//	type collector struct {
//	    subproc.NopListener
//	    proc *subproc.Process
//	    out  bytes.Buffer
//	}
//
//	func (c *collector) StandardOutputAvailable() {
//	    buf := make([]byte, 4096)
//	    for {
//	        n := c.proc.ReadStandardOutput(buf)
//	        if n == 0 {
//	            return
//	        }
//	        c.out.Write(buf[:n])
//	    }
//	}
//
// Reads and writes never block. A read returning zero bytes means no data
// right now, not end-of-stream; the next StandardOutputAvailable says when
// to retry. A write returning a short count means the transport is full;
// the caller retries the remainder after StandardInputAvailable. Both
// notifications are edge-triggered: attempt the operation first, wait only
// after a short result.
//
// # Threading Model
//
// A Process spawns no goroutines of its own and confines to the goroutine
// that drives it: every callback runs synchronously from Poll or a WaitFor*
// call on that goroutine. Concurrent use from several goroutines without
// external serialization is not supported.
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	proc := subproc.New(subproc.WithProgram("cat"), subproc.WithLogger(logger))
//
// Each run is tagged with a ULID, available as proc.RunID(), so log records
// from successive runs stay distinguishable.
package subproc
