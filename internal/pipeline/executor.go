// Package pipeline provides reference collaborator implementations that
// query real build infrastructure: a gh-backed CI checker, command-backed
// performance and security checkers, and a command-backed deploy trigger.
//
// The remediation core depends only on the collaborator interfaces; every
// implementation here can be swapped for a platform-specific one.
package pipeline

import (
	"context"
	"fmt"
	"os/exec"

	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// CommandExecutor executes shell commands. Used for testing.
type CommandExecutor interface {
	// Execute runs a command and returns its combined output.
	Execute(ctx context.Context, workDir, name string, args ...string) ([]byte, error)
}

// defaultCommandExecutor runs commands with os/exec.
type defaultCommandExecutor struct{}

// Execute runs the command in workDir and returns combined stdout/stderr.
func (defaultCommandExecutor) Execute(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //#nosec G204 -- command comes from operator configuration
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%w: %s %v: %s", remerrors.ErrCommandFailed, name, args, err)
	}
	return output, nil
}
