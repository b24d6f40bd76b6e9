package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// SSHRunner runs a command and returns its combined output.
type SSHRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec. The process is killed when ctx
// is done.
type ExecRunner struct{}

// Run executes name with args and returns trimmed combined output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = time.Second

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}
