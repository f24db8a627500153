//go:build windows

package backend

import "os"

// ntstatusSeverityError is the lower bound of the NTSTATUS error range.
// Children terminated by the OS (access violations, unhandled exceptions)
// report codes in this range.
const ntstatusSeverityError = 0xC0000000

// decodeExit maps a reaped child's exit code to the exit code and crash
// flag. Windows has no signal disambiguation; a forced termination by this
// backend or an NTSTATUS-range code reports a crash, anything else is a
// normal exit carrying the OS-reported code.
func decodeExit(state *os.ProcessState, killed bool) (uint32, bool) {
	//nolint:gosec // G115: the conversion round-trips the OS-reported DWORD
	code := uint32(state.ExitCode())

	return code, killed || code >= ntstatusSeverityError
}
