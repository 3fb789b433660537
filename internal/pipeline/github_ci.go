package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/monitor"
)

// ghRunEntry represents a single workflow run from gh run list JSON output.
type ghRunEntry struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	Workflow   string `json:"workflowName"`
	HeadSha    string `json:"headSha"`
}

// GitHubCIChecker queries workflow run state for a commit via the gh CLI.
type GitHubCIChecker struct {
	workDir string
	logger  zerolog.Logger
	cmdExec CommandExecutor
}

// GitHubCICheckerOption configures a GitHubCIChecker.
type GitHubCICheckerOption func(*GitHubCIChecker)

// WithCILogger sets the logger for CI queries.
func WithCILogger(logger zerolog.Logger) GitHubCICheckerOption {
	return func(c *GitHubCIChecker) { c.logger = logger }
}

// WithCICommandExecutor sets a custom command executor (for testing).
func WithCICommandExecutor(exec CommandExecutor) GitHubCICheckerOption {
	return func(c *GitHubCIChecker) { c.cmdExec = exec }
}

// NewGitHubCIChecker creates a checker running gh in workDir.
func NewGitHubCIChecker(workDir string, opts ...GitHubCICheckerOption) *GitHubCIChecker {
	c := &GitHubCIChecker{
		workDir: workDir,
		logger:  zerolog.Nop(),
		cmdExec: defaultCommandExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the CI verdict for commitID from gh run list.
func (c *GitHubCIChecker) Status(ctx context.Context, commitID string) (monitor.CIStatus, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return monitor.CIStatus{}, ctx.Err()
	default:
	}

	args := []string{
		"run", "list",
		"--commit", commitID,
		"--json", "name,status,conclusion,workflowName,headSha",
	}

	output, err := c.cmdExec.Execute(ctx, c.workDir, "gh", args...)
	if err != nil {
		return monitor.CIStatus{}, fmt.Errorf("failed to list workflow runs: %w", err)
	}

	runs, err := parseRunEntries(output)
	if err != nil {
		return monitor.CIStatus{}, err
	}

	status := determineCIStatus(runs)

	c.logger.Debug().
		Str("commit_id", commitID).
		Int("runs", len(runs)).
		Str("status", status.Status.String()).
		Strs("failed_jobs", status.FailedJobs).
		Msg("gh run list parsed")

	return status, nil
}

// parseRunEntries parses JSON output from the gh run list command.
func parseRunEntries(output []byte) ([]ghRunEntry, error) {
	// Handle empty output (no runs for the commit)
	if len(bytes.TrimSpace(output)) == 0 {
		return []ghRunEntry{}, nil
	}

	var entries []ghRunEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse workflow run JSON: %w", err)
	}
	return entries, nil
}

// determineCIStatus synthesizes a CI verdict from workflow runs.
// Failure or cancellation of any run is a failure; any run still queued
// or executing makes the commit's CI running; no runs at all counts as
// running so the loop re-polls instead of declaring success on an empty
// answer.
func determineCIStatus(runs []ghRunEntry) monitor.CIStatus {
	if len(runs) == 0 {
		return monitor.CIStatus{Status: constants.VerdictRunning}
	}

	var failed []string
	hasPending := false

	for _, run := range runs {
		switch strings.ToLower(run.Status) {
		case "completed":
			switch strings.ToLower(run.Conclusion) {
			case "failure", "cancelled", "timed_out":
				failed = append(failed, runName(run))
			case "success", "skipped", "neutral":
				// Passing, continue checking others
			default:
				// Unknown conclusion, treat as pending
				hasPending = true
			}
		default:
			// queued, in_progress, waiting
			hasPending = true
		}
	}

	switch {
	case len(failed) > 0:
		return monitor.CIStatus{Status: constants.VerdictFailure, FailedJobs: failed}
	case hasPending:
		return monitor.CIStatus{Status: constants.VerdictRunning}
	default:
		return monitor.CIStatus{Status: constants.VerdictSuccess}
	}
}

// runName prefers the workflow name, falling back to the run name.
func runName(run ghRunEntry) string {
	if run.Workflow != "" {
		return run.Workflow
	}
	return run.Name
}

// Ensure GitHubCIChecker implements the collaborator interface.
var _ monitor.CIStatusChecker = (*GitHubCIChecker)(nil)
