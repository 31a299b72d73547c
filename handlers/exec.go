package handlers

import (
	"context"
	"os/exec"
	"time"
)

// runCmd runs command through the shell and returns whatever combined
// stdout/stderr it produced. A non-zero exit status is not an error here;
// callers serve the output regardless. With timeout zero the call blocks
// until the child exits; otherwise the child is killed at the deadline and
// the partial output is returned.
func runCmd(timeout time.Duration, command string) []byte {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if timeout > 0 {
		// Children surviving the kill can hold the output pipe open;
		// give up on it shortly after the deadline.
		cmd.WaitDelay = time.Second
	}
	out, _ := cmd.CombinedOutput()
	return out
}
