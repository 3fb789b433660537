package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/deploy"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
	"github.com/mrz1836/remedy/internal/monitor"
)

// CommandPerformanceChecker runs a configured command to decide whether
// performance tests pass. Exit status zero means passed; each non-empty
// output line is reported as a regression on failure.
type CommandPerformanceChecker struct {
	workDir string
	command []string
	logger  zerolog.Logger
	cmdExec CommandExecutor
}

// NewCommandPerformanceChecker creates a checker for the given command.
// The command is the argv to run, e.g. ["make", "perf-check"].
func NewCommandPerformanceChecker(workDir string, command []string, logger zerolog.Logger, cmdExec CommandExecutor) *CommandPerformanceChecker {
	if cmdExec == nil {
		cmdExec = defaultCommandExecutor{}
	}
	return &CommandPerformanceChecker{
		workDir: workDir,
		command: command,
		logger:  logger,
		cmdExec: cmdExec,
	}
}

// Status runs the performance command and reports the result.
// With no command configured the check passes; deployments without a
// perf gate should not fail every attempt.
func (c *CommandPerformanceChecker) Status(ctx context.Context) (monitor.PerfStatus, error) {
	if len(c.command) == 0 {
		return monitor.PerfStatus{Passed: true}, nil
	}

	output, err := c.cmdExec.Execute(ctx, c.workDir, c.command[0], c.command[1:]...)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("command", strings.Join(c.command, " ")).
			Msg("performance check command failed")
		return monitor.PerfStatus{
			Passed:      false,
			Regressions: outputLines(output),
		}, nil
	}

	return monitor.PerfStatus{Passed: true}, nil
}

// CommandSecurityChecker runs a configured command to decide whether the
// security audit passes. Exit status zero means passed; the number of
// non-empty output lines on failure approximates the finding count.
type CommandSecurityChecker struct {
	workDir string
	command []string
	logger  zerolog.Logger
	cmdExec CommandExecutor
}

// NewCommandSecurityChecker creates a checker for the given command.
func NewCommandSecurityChecker(workDir string, command []string, logger zerolog.Logger, cmdExec CommandExecutor) *CommandSecurityChecker {
	if cmdExec == nil {
		cmdExec = defaultCommandExecutor{}
	}
	return &CommandSecurityChecker{
		workDir: workDir,
		command: command,
		logger:  logger,
		cmdExec: cmdExec,
	}
}

// Status runs the security command and reports the result.
func (c *CommandSecurityChecker) Status(ctx context.Context) (monitor.SecurityStatus, error) {
	if len(c.command) == 0 {
		return monitor.SecurityStatus{Passed: true}, nil
	}

	output, err := c.cmdExec.Execute(ctx, c.workDir, c.command[0], c.command[1:]...)
	if err != nil {
		findings := outputLines(output)
		c.logger.Debug().
			Err(err).
			Str("command", strings.Join(c.command, " ")).
			Int("findings", len(findings)).
			Msg("security check command failed")
		return monitor.SecurityStatus{
			Passed:          false,
			Vulnerabilities: len(findings),
		}, nil
	}

	return monitor.SecurityStatus{Passed: true}, nil
}

// CommandDeployTrigger triggers redeploys by running a configured
// command. The commit id is appended as the final argument; the first
// non-empty output line is used as the deployment identifier.
type CommandDeployTrigger struct {
	workDir string
	command []string
	logger  zerolog.Logger
	cmdExec CommandExecutor
}

// NewCommandDeployTrigger creates a trigger for the given command.
func NewCommandDeployTrigger(workDir string, command []string, logger zerolog.Logger, cmdExec CommandExecutor) *CommandDeployTrigger {
	if cmdExec == nil {
		cmdExec = defaultCommandExecutor{}
	}
	return &CommandDeployTrigger{
		workDir: workDir,
		command: command,
		logger:  logger,
		cmdExec: cmdExec,
	}
}

// Trigger runs the deploy command for commitID. Fix metadata is not
// passed to the command; the fixes already took effect upstream and the
// deploy only needs the commit.
func (t *CommandDeployTrigger) Trigger(ctx context.Context, commitID string, fixes []domain.AppliedFix) (string, error) {
	if len(t.command) == 0 {
		return "", remerrors.ErrCommandNotConfigured
	}

	args := append(append([]string{}, t.command[1:]...), commitID)
	output, err := t.cmdExec.Execute(ctx, t.workDir, t.command[0], args...)
	if err != nil {
		return "", err
	}

	deploymentID := ""
	if lines := outputLines(output); len(lines) > 0 {
		deploymentID = lines[0]
	}

	t.logger.Info().
		Str("commit_id", commitID).
		Str("deployment_id", deploymentID).
		Int("fixes", len(fixes)).
		Msg("deploy command completed")

	return deploymentID, nil
}

// outputLines splits command output into trimmed, non-empty lines.
func outputLines(output []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Ensure checkers implement the collaborator interfaces.
var (
	_ monitor.PerformanceChecker = (*CommandPerformanceChecker)(nil)
	_ monitor.SecurityChecker    = (*CommandSecurityChecker)(nil)
	_ deploy.Trigger             = (*CommandDeployTrigger)(nil)
)
