//go:build unix

package source

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcAttributes puts the capture process in its own group so Close can
// take down anything it forked.
func setProcAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	if err == unix.ESRCH {
		return nil
	}
	return err
}
