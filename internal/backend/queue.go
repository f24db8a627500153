package backend

import "sync"

// eventQueue collects events posted by the pump goroutines until the owning
// goroutine drains them. The doorbell channel has capacity one so that posts
// never block; a stale signal after a drain only causes one extra empty
// TakeEvents pass.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	bell   chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{bell: make(chan struct{}, 1)}
}

func (q *eventQueue) post(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()

	select {
	case q.bell <- struct{}{}:
	default:
	}
}

func (q *eventQueue) take() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.events
	q.events = nil

	return events
}

func (q *eventQueue) ready() <-chan struct{} {
	return q.bell
}
