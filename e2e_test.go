package subproc

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("end-to-end tests use /bin/sh")
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx
}

// countingListener tallies readiness callbacks for the end-to-end runs.
type countingListener struct {
	NopListener

	started        int
	finished       int
	stdinAvailable int
	errs           []error
}

func (l *countingListener) Started() { l.started++ }

func (l *countingListener) Finished(ExitStatus, uint32) { l.finished++ }

func (l *countingListener) StandardInputAvailable() { l.stdinAvailable++ }

func (l *countingListener) ErrorOccurred(err error) { l.errs = append(l.errs, err) }

func TestEndToEnd_EchoExitsNormally(t *testing.T) {
	skipOnWindows(t)

	l := &countingListener{}
	p := New(
		WithProgram("/bin/sh"),
		WithArguments("-c", "echo hi"),
		WithListener(l),
	)
	defer p.Close()

	ctx := testContext(t)

	require.NoError(t, p.Start())
	require.True(t, p.WaitForStarted(ctx))
	assert.Equal(t, 1, l.started)

	require.True(t, p.WaitForStandardOutputAvailable(ctx))

	var out bytes.Buffer

	buf := make([]byte, 4096)

	for {
		n := p.ReadStandardOutput(buf)
		if n == 0 {
			break
		}

		out.Write(buf[:n])
	}

	assert.Equal(t, "hi\n", out.String())

	require.True(t, p.WaitForFinished(ctx))
	assert.Equal(t, 1, l.finished)

	status, err := p.ExitStatus()
	require.NoError(t, err)
	assert.Equal(t, ExitNormal, status)

	code, err := p.ExitCode()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), code)
}

func TestEndToEnd_BackpressuredStdinDrains(t *testing.T) {
	skipOnWindows(t)

	l := &countingListener{}
	p := New(
		WithProgram("/bin/sh"),
		WithArguments("-c", "sleep 0.3; cat >/dev/null"),
		WithListener(l),
	)
	defer p.Close()

	ctx := testContext(t)

	require.NoError(t, p.Start())
	require.True(t, p.WaitForStarted(ctx))

	data := bytes.Repeat([]byte("x"), 1<<20)

	// One megabyte cannot fit: the first write must come up short.
	n := p.WriteStandardInput(data)
	require.Less(t, n, len(data))
	require.Positive(t, n)

	require.True(t, p.WaitForStandardInputAvailable(ctx))
	assert.Equal(t, 1, l.stdinAvailable)

	shortWrites := 1
	offset := n

	for offset < len(data) {
		m := p.WriteStandardInput(data[offset:])
		offset += m

		if offset < len(data) {
			shortWrites++

			require.True(t, p.WaitForStandardInputAvailable(ctx))
		}
	}

	// Exactly one notification per short write, never more.
	assert.Equal(t, shortWrites, l.stdinAvailable)

	p.CloseStandardInput()

	require.True(t, p.WaitForFinished(ctx))

	status, err := p.ExitStatus()
	require.NoError(t, err)
	assert.Equal(t, ExitNormal, status)
	assert.Empty(t, l.errs)
}

func TestEndToEnd_KillTermIgnoringChild(t *testing.T) {
	skipOnWindows(t)

	l := &countingListener{}
	p := New(
		WithProgram("/bin/sh"),
		WithArguments("-c", `trap '' TERM; echo ready; while :; do sleep 0.2; done`),
		WithListener(l),
	)
	defer p.Close()

	ctx := testContext(t)

	require.NoError(t, p.Start())
	require.True(t, p.WaitForStarted(ctx))

	// Started only confirms the fork; reading the marker ensures the trap
	// is installed before the stop request goes out.
	var marker bytes.Buffer

	buf := make([]byte, 4096)

	for !bytes.Contains(marker.Bytes(), []byte("ready")) {
		require.True(t, p.WaitForStandardOutputAvailable(ctx))

		for {
			n := p.ReadStandardOutput(buf)
			if n == 0 {
				break
			}

			marker.Write(buf[:n])
		}
	}

	// The child ignores the cooperative stop.
	require.NoError(t, p.Terminate())

	shortCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.False(t, p.WaitForFinished(shortCtx))
	assert.Equal(t, StatusRunning, p.Status())

	// The forced stop cannot be ignored.
	require.NoError(t, p.Kill())
	require.True(t, p.WaitForFinished(ctx))

	status, err := p.ExitStatus()
	require.NoError(t, err)
	assert.Equal(t, ExitCrash, status)

	// SIGKILL's signal number on every POSIX platform this runs on.
	code, err := p.ExitCode()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), code)
}

func TestEndToEnd_MissingProgramFailsToStart(t *testing.T) {
	skipOnWindows(t)

	l := &countingListener{}
	p := New(
		WithProgram("/nonexistent/helper"),
		WithListener(l),
	)
	defer p.Close()

	require.NoError(t, p.Start())
	assert.Equal(t, StatusNotRunning, p.Status())
	assert.False(t, p.WaitForStarted(expiredContext()))

	require.Len(t, l.errs, 1)

	var startErr *FailedToStartError

	require.ErrorAs(t, l.errs[0], &startErr)
	assert.Equal(t, "/nonexistent/helper", startErr.Program)
	assert.Equal(t, 0, l.started)
}

func TestEndToEnd_RestartAfterExit(t *testing.T) {
	skipOnWindows(t)

	l := &countingListener{}
	p := New(
		WithProgram("/bin/sh"),
		WithArguments("-c", "exit 5"),
		WithListener(l),
	)
	defer p.Close()

	ctx := testContext(t)

	require.NoError(t, p.Start())
	require.True(t, p.WaitForFinished(ctx))

	code, err := p.ExitCode()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), code)

	firstRun := p.RunID()

	// The same Process restarts with fresh configuration.
	require.NoError(t, p.SetArguments("-c", "exit 0"))
	require.NoError(t, p.Start())
	require.True(t, p.WaitForFinished(ctx))

	code, err = p.ExitCode()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), code)
	assert.NotEqual(t, firstRun, p.RunID())
	assert.Equal(t, 2, l.finished)
}
