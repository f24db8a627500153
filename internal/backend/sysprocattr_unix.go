//go:build !windows

package backend

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr places the child in its own process group so stop signals
// reach its descendants as well.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
