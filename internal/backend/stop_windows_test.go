//go:build windows

package backend

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminateProcess_BestEffortNeverErrors(t *testing.T) {
	require.NoError(t, terminateProcess(&exec.Cmd{}))

	cmd := exec.Command("cmd", "/c", "exit 0")
	setSysProcAttr(cmd)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Wait() })

	// A cooperative stop request is best-effort: no delivery error reaches
	// the caller, even when the child is already gone.
	require.NoError(t, terminateProcess(cmd))
	require.NoError(t, terminateProcess(cmd))
}
