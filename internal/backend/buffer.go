package backend

import (
	"errors"
	"sync"
)

// errBufferClosed stops a pump once its buffer has been released.
var errBufferClosed = errors.New("stream buffer closed")

// outBuffer holds bytes pumped from a child output pipe until the owner
// reads them. Appends block while the buffer is full, which propagates
// backpressure to the child through the OS pipe. The notify callback fires
// on every empty to non-empty transition and never while data remains, the
// edge-triggered contract the core relies on.
type outBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	max    int
	closed bool
	notify func()
}

func newOutBuffer(max int, notify func()) *outBuffer {
	b := &outBuffer{max: max, notify: notify}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// append adds p to the buffer, blocking while full. Returns errBufferClosed
// once close has been called.
func (b *outBuffer) append(p []byte) error {
	for len(p) > 0 {
		b.mu.Lock()

		for !b.closed && len(b.data) >= b.max {
			b.cond.Wait()
		}

		if b.closed {
			b.mu.Unlock()

			return errBufferClosed
		}

		wasEmpty := len(b.data) == 0

		n := min(len(p), b.max-len(b.data))
		b.data = append(b.data, p[:n]...)
		p = p[n:]

		b.mu.Unlock()

		if wasEmpty {
			b.notify()
		}
	}

	return nil
}

// take copies up to len(p) buffered bytes into p. A zero count means the
// buffer is currently empty.
func (b *outBuffer) take(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(p, b.data)
	if n > 0 {
		b.data = b.data[:copy(b.data, b.data[n:])]
		b.cond.Signal()
	}

	return n
}

// close releases the buffer and unblocks any pending append. Idempotent.
func (b *outBuffer) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// inBuffer holds bytes the owner has written ahead of the child reading
// them. offer never blocks: it accepts what fits and reports a short count
// for the rest. After a short offer the notify callback fires exactly once,
// when the pump next frees space, and not again until another short offer.
type inBuffer struct {
	mu         sync.Mutex
	cond       *sync.Cond
	data       []byte
	max        int
	closing    bool
	closed     bool
	wantNotify bool
	notify     func()
}

func newInBuffer(max int, notify func()) *inBuffer {
	b := &inBuffer{max: max, notify: notify}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// offer accepts up to len(p) bytes and returns how many fit.
func (b *inBuffer) offer(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closing || b.closed {
		return 0
	}

	n := min(len(p), b.max-len(b.data))
	b.data = append(b.data, p[:n]...)

	if n < len(p) {
		b.wantNotify = true
	}

	if n > 0 {
		b.cond.Signal()
	}

	return n
}

// next blocks until bytes are available or the buffer is shutting down and
// returns a batch to write to the child. The second result reports whether
// the pump should close the pipe and stop: true once the buffer is closing
// and fully drained.
func (b *inBuffer) next() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.data) == 0 && !b.closing && !b.closed {
		b.cond.Wait()
	}

	if b.closed || (b.closing && len(b.data) == 0) {
		return nil, true
	}

	batch := b.data
	b.data = nil

	if b.wantNotify {
		b.wantNotify = false
		b.notify()
	}

	return batch, false
}

// closeDrain requests an orderly shutdown: buffered bytes still reach the
// child, then the pump closes the pipe. Idempotent.
func (b *inBuffer) closeDrain() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closing = true
	b.cond.Broadcast()
}

// closeNow discards buffered bytes and stops the pump immediately.
func (b *inBuffer) closeNow() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.data = nil
	b.cond.Broadcast()
}
