package engine

import (
	"context"
	"os"
	"os/exec"
)

// CommandRunner is the interface for running external commands. Loaders
// accept one so artifact acquisition can be exercised in tests without
// real binaries on the PATH.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, extraEnv []string) (output []byte, err error)
}

// ExecCommandRunner uses os/exec.
type ExecCommandRunner struct{}

// Run runs a command and returns its combined output. extraEnv entries
// are appended to the inherited process environment.
func (ExecCommandRunner) Run(ctx context.Context, name string, args []string, extraEnv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	return cmd.CombinedOutput()
}
