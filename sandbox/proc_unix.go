//go:build unix

package sandbox

import "syscall"

// sysProcAttr places the child in a new process group so the whole group
// can be killed on timeout.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

// killProcessGroup delivers a non-catchable SIGKILL to the child's entire
// process group.
func killProcessGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
