// Package backend provides the platform layer that spawns child processes
// and services their standard streams.
//
// The core state machine in the root package drives a Backend through a
// narrow contract: spawn a child, drain an event queue describing what the
// operating system reported (child started, child exited, a stream became
// readable or writable), and issue non-blocking reads, writes, closes and
// stop requests against the returned Handle.
//
// The default implementation, ExecBackend, is built on os/exec. Internal
// goroutines pump the child's pipes into bounded buffers and post
// edge-triggered readiness events; they never invoke caller code, so all
// listener dispatch stays on the goroutine driving the Process. A full
// stream buffer applies backpressure to the child, exactly as a full OS
// pipe would, so callers must keep draining stdout and stderr of a chatty
// child while waiting for it to exit.
package backend
