//go:build windows

package runner

import "os/exec"

// configureStop kills the child directly. Windows has no process groups or
// SIGTERM.
func configureStop(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}
