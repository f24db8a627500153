//go:build !windows

package backend

import (
	"os"
	"syscall"
)

// decodeExit maps a reaped child's wait status to the exit code and crash
// flag. A signaled child reports the terminating signal number as its code.
func decodeExit(state *os.ProcessState, killed bool) (uint32, bool) {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return uint32(ws.Signal()), true
		}

		return uint32(ws.ExitStatus()), false
	}

	//nolint:gosec // G115: negative exit codes only occur without a wait status
	return uint32(state.ExitCode()), killed
}
