package backend

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutBuffer_NotifyOnEmptyToNonEmptyOnly(t *testing.T) {
	notified := 0
	b := newOutBuffer(64, func() { notified++ })

	require.NoError(t, b.append([]byte("abc")))
	assert.Equal(t, 1, notified)

	// Still non-empty: no second notification.
	require.NoError(t, b.append([]byte("def")))
	assert.Equal(t, 1, notified)

	buf := make([]byte, 16)
	n := b.take(buf)
	require.Equal(t, 6, n)
	assert.Equal(t, []byte("abcdef"), buf[:n])

	// Drained to empty: the next append notifies again.
	require.NoError(t, b.append([]byte("g")))
	assert.Equal(t, 2, notified)
}

func TestOutBuffer_TakePartial(t *testing.T) {
	b := newOutBuffer(64, func() {})

	require.NoError(t, b.append([]byte("hello world")))

	buf := make([]byte, 5)
	require.Equal(t, 5, b.take(buf))
	assert.Equal(t, []byte("hello"), buf)

	require.Equal(t, 5, b.take(buf))
	assert.Equal(t, []byte(" worl"), buf)

	require.Equal(t, 1, b.take(buf))
	assert.Equal(t, byte('d'), buf[0])

	assert.Equal(t, 0, b.take(buf))
}

func TestOutBuffer_AppendBlocksUntilTake(t *testing.T) {
	b := newOutBuffer(4, func() {})

	require.NoError(t, b.append([]byte("full")))

	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = b.append([]byte("more"))
	}()

	select {
	case <-done:
		t.Fatal("append returned while the buffer was full")
	case <-time.After(50 * time.Millisecond):
	}

	drained := make([]byte, 8)
	require.Equal(t, 4, b.take(drained[:4]))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append did not resume after space freed")
	}

	assert.Equal(t, 4, b.take(drained))
	assert.Equal(t, []byte("more"), drained[:4])
}

func TestOutBuffer_CloseUnblocksAppend(t *testing.T) {
	b := newOutBuffer(2, func() {})

	require.NoError(t, b.append([]byte("xy")))

	errCh := make(chan error, 1)

	go func() {
		errCh <- b.append([]byte("z"))
	}()

	time.Sleep(20 * time.Millisecond)
	b.close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, errBufferClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("append did not observe close")
	}
}

func TestInBuffer_ShortOfferThenSingleNotify(t *testing.T) {
	notified := 0
	b := newInBuffer(4, func() { notified++ })

	// Fits entirely: no notification armed.
	require.Equal(t, 2, b.offer([]byte("ab")))

	batch, done := b.next()
	require.False(t, done)
	assert.Equal(t, []byte("ab"), batch)
	assert.Equal(t, 0, notified)

	// Short offer arms exactly one notification.
	require.Equal(t, 4, b.offer([]byte("abcdef")))

	batch, done = b.next()
	require.False(t, done)
	assert.Equal(t, []byte("abcd"), batch)
	assert.Equal(t, 1, notified)

	// No further notification until another short offer.
	require.Equal(t, 1, b.offer([]byte("x")))

	batch, done = b.next()
	require.False(t, done)
	assert.Equal(t, []byte("x"), batch)
	assert.Equal(t, 1, notified)
}

func TestInBuffer_OfferWhenFullReturnsZero(t *testing.T) {
	b := newInBuffer(3, func() {})

	require.Equal(t, 3, b.offer([]byte("abc")))
	assert.Equal(t, 0, b.offer([]byte("d")))
}

func TestInBuffer_CloseDrainDeliversTail(t *testing.T) {
	b := newInBuffer(16, func() {})

	require.Equal(t, 4, b.offer([]byte("tail")))
	b.closeDrain()

	// Writes after close are rejected.
	assert.Equal(t, 0, b.offer([]byte("x")))

	batch, done := b.next()
	require.False(t, done)
	assert.True(t, bytes.Equal(batch, []byte("tail")))

	_, done = b.next()
	assert.True(t, done)
}

func TestInBuffer_CloseNowDiscards(t *testing.T) {
	b := newInBuffer(16, func() {})

	require.Equal(t, 4, b.offer([]byte("gone")))
	b.closeNow()

	_, done := b.next()
	assert.True(t, done)
}

func TestInBuffer_NextBlocksUntilOffer(t *testing.T) {
	b := newInBuffer(16, func() {})

	got := make(chan []byte, 1)

	go func() {
		batch, done := b.next()
		if !done {
			got <- batch
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 5, b.offer([]byte("later")))

	select {
	case batch := <-got:
		assert.Equal(t, []byte("later"), batch)
	case <-time.After(2 * time.Second):
		t.Fatal("next did not observe the offer")
	}
}
