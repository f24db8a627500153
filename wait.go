package subproc

import "context"

// The WaitFor* adapters convert the asynchronous model into blocking calls
// for callers preferring synchronous control flow. Each pumps the same
// backend event path as Poll, one event at a time, dispatching listener
// callbacks as it goes, until the awaited condition is observed (the
// relevant callback has then already fired) or ctx ends. They block only
// the calling goroutine; use context.Background() for an unbounded wait or
// context.WithTimeout for a bounded one. A timeout returns false with no
// callback skipped or duplicated later.
//
// Nested waits, including a WaitFor* call from inside a listener callback,
// are not supported and panic.

// WaitForStarted blocks until the current run's Started callback has been
// dispatched, or returns true immediately when it already has. Returns
// false once ctx ends; in particular, a run that failed to start never
// satisfies the wait.
func (p *Process) WaitForStarted(ctx context.Context) bool {
	return p.waitFor(ctx, func() bool { return p.runStarted })
}

// WaitForFinished blocks until the current run's Finished callback has
// been dispatched, or returns true immediately when it already has.
func (p *Process) WaitForFinished(ctx context.Context) bool {
	return p.waitFor(ctx, func() bool { return p.runFinished })
}

// WaitForStandardInputAvailable blocks until the stdin channel has
// signaled room after a short write and that readiness has not yet been
// consumed by a write.
func (p *Process) WaitForStandardInputAvailable(ctx context.Context) bool {
	return p.waitFor(ctx, func() bool { return p.stdin.ready })
}

// WaitForStandardOutputAvailable blocks until the stdout channel has
// signaled data and that readiness has not yet been consumed by a read.
func (p *Process) WaitForStandardOutputAvailable(ctx context.Context) bool {
	return p.waitFor(ctx, func() bool { return p.stdout.ready })
}

// WaitForStandardErrorAvailable blocks until the stderr channel has
// signaled data and that readiness has not yet been consumed by a read.
func (p *Process) WaitForStandardErrorAvailable(ctx context.Context) bool {
	return p.waitFor(ctx, func() bool { return p.stderr.ready })
}

// waitFor pumps backend events one at a time until cond holds or ctx ends.
// Processing one event per iteration keeps the stop point exact: events
// behind the awaited one stay queued for the next pump, so a caller woken
// by readiness can still read buffered data before a queued exit closes
// the channels.
func (p *Process) waitFor(ctx context.Context, cond func() bool) bool {
	if p.waiting {
		panic("subproc: nested WaitFor* calls on the same Process are not supported")
	}

	p.waiting = true
	defer func() { p.waiting = false }()

	for {
		if cond() {
			return true
		}

		if e, ok := p.takeEvent(); ok {
			p.handleEvent(e)

			continue
		}

		var bell <-chan struct{}
		if p.handle != nil {
			bell = p.handle.Ready()
		}

		select {
		case <-ctx.Done():
			return false
		case <-bell:
			// New events posted; drain on the next iteration. A nil bell
			// (no live handle) blocks until ctx ends.
		}
	}
}
