package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_PostAndTakeInOrder(t *testing.T) {
	q := newEventQueue()

	q.post(Event{Type: EventStarted})
	q.post(Event{Type: EventStdoutReadable})
	q.post(Event{Type: EventExited, ExitCode: 3})

	events := q.take()
	require.Len(t, events, 3)
	assert.Equal(t, EventStarted, events[0].Type)
	assert.Equal(t, EventStdoutReadable, events[1].Type)
	assert.Equal(t, EventExited, events[2].Type)
	assert.Equal(t, uint32(3), events[2].ExitCode)

	assert.Empty(t, q.take())
}

func TestEventQueue_DoorbellNeverBlocks(t *testing.T) {
	q := newEventQueue()

	// Many posts without a drain must not block even though the doorbell
	// has capacity one.
	for i := 0; i < 100; i++ {
		q.post(Event{Type: EventStdoutReadable})
	}

	select {
	case <-q.ready():
	default:
		t.Fatal("doorbell not signalled after posts")
	}

	assert.Len(t, q.take(), 100)
}

func TestEventQueue_StaleDoorbellIsHarmless(t *testing.T) {
	q := newEventQueue()

	q.post(Event{Type: EventStarted})
	require.Len(t, q.take(), 1)

	// The doorbell token may survive the drain; a receiver waking on it
	// simply finds nothing to do.
	select {
	case <-q.ready():
	default:
	}

	assert.Empty(t, q.take())
}
