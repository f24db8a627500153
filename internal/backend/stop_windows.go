//go:build windows

package backend

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/windows"
)

// terminateProcess sends CTRL_BREAK_EVENT to the child's process group, the
// closest Windows analogue of a cooperative stop request. Best-effort: a
// child without a console cannot receive it, so delivery failures are not
// surfaced.
func terminateProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	//nolint:gosec // G115: pids fit in a DWORD
	_ = windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(cmd.Process.Pid))

	return nil
}

// killProcess forcibly terminates the child via TerminateProcess.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process %d: %w", cmd.Process.Pid, err)
	}

	return nil
}
