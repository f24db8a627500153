//go:build !windows

package backend

import (
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

// terminateProcess delivers SIGTERM to the child's process group, the
// cooperative stop request. The child may catch or ignore it.
func terminateProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	if err := unix.Kill(-cmd.Process.Pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("signal process group %d: %w", cmd.Process.Pid, err)
	}

	return nil
}

// killProcess delivers SIGKILL to the child's process group, which cannot be
// caught or ignored.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("kill process group %d: %w", cmd.Process.Pid, err)
	}

	return nil
}
