//go:build unix

package session

import (
	"os/exec"
	"syscall"
)

// killProcess kills the whole session the child leads. pty.Start makes the
// child a session leader, so its pid is also its process group id.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
