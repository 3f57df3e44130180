//go:build !unix

package execute

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func exitStatusFromError(exitErr *exec.ExitError) (int, bool) {
	return exitErr.ExitCode(), true
}
