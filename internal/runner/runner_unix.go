//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// configureStop puts the child in its own process group so cancellation
// reaches every process it spawned.
func configureStop(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		pgid, err := syscall.Getpgid(cmd.Process.Pid)
		if err != nil {
			return cmd.Process.Signal(syscall.SIGTERM)
		}
		return syscall.Kill(-pgid, syscall.SIGTERM)
	}
}
