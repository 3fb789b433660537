package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/testutil"
)

// fakeExecutor records the command it was asked to run and replays a
// scripted answer.
type fakeExecutor struct {
	output  []byte
	err     error
	workDir string
	name    string
	args    []string
	calls   int
}

func (e *fakeExecutor) Execute(_ context.Context, workDir, name string, args ...string) ([]byte, error) {
	e.calls++
	e.workDir = workDir
	e.name = name
	e.args = args
	return e.output, e.err
}

func TestGitHubCIChecker_Status_CommandShape(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: []byte("[]")}
	checker := NewGitHubCIChecker("/repo", WithCICommandExecutor(exec))

	_, err := checker.Status(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "/repo", exec.workDir)
	assert.Equal(t, "gh", exec.name)
	assert.Equal(t, []string{
		"run", "list",
		"--commit", "abc123",
		"--json", "name,status,conclusion,workflowName,headSha",
	}, exec.args)
}

func TestGitHubCIChecker_Status_VerdictSynthesis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		output     string
		wantStatus constants.Verdict
		wantJobs   []string
	}{
		{
			name:       "no runs yet counts as running",
			output:     "",
			wantStatus: constants.VerdictRunning,
		},
		{
			name:       "empty array counts as running",
			output:     "[]",
			wantStatus: constants.VerdictRunning,
		},
		{
			name:       "all runs succeeded",
			output:     `[{"name":"ci","status":"completed","conclusion":"success"},{"name":"lint","status":"completed","conclusion":"skipped"}]`,
			wantStatus: constants.VerdictSuccess,
		},
		{
			name:       "neutral conclusion passes",
			output:     `[{"name":"ci","status":"completed","conclusion":"neutral"}]`,
			wantStatus: constants.VerdictSuccess,
		},
		{
			name:       "failed run fails the commit",
			output:     `[{"name":"ci","status":"completed","conclusion":"failure","workflowName":"CI"},{"name":"lint","status":"completed","conclusion":"success"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"CI"},
		},
		{
			name:       "cancelled run fails the commit",
			output:     `[{"name":"ci","status":"completed","conclusion":"cancelled","workflowName":"CI"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"CI"},
		},
		{
			name:       "timed out run fails the commit",
			output:     `[{"name":"ci","status":"completed","conclusion":"timed_out","workflowName":"CI"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"CI"},
		},
		{
			name:       "run name used when workflow name is missing",
			output:     `[{"name":"nightly","status":"completed","conclusion":"failure"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"nightly"},
		},
		{
			name:       "in progress run keeps the commit running",
			output:     `[{"name":"ci","status":"in_progress","conclusion":""},{"name":"lint","status":"completed","conclusion":"success"}]`,
			wantStatus: constants.VerdictRunning,
		},
		{
			name:       "queued run keeps the commit running",
			output:     `[{"name":"ci","status":"queued","conclusion":""}]`,
			wantStatus: constants.VerdictRunning,
		},
		{
			name:       "unknown conclusion treated as pending",
			output:     `[{"name":"ci","status":"completed","conclusion":"action_required"}]`,
			wantStatus: constants.VerdictRunning,
		},
		{
			name:       "failure wins over pending",
			output:     `[{"name":"ci","status":"in_progress","conclusion":""},{"name":"build","status":"completed","conclusion":"failure","workflowName":"Build"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"Build"},
		},
		{
			name:       "multiple failures all reported",
			output:     `[{"name":"build","status":"completed","conclusion":"failure","workflowName":"Build"},{"name":"test","status":"completed","conclusion":"failure","workflowName":"Test"}]`,
			wantStatus: constants.VerdictFailure,
			wantJobs:   []string{"Build", "Test"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := NewGitHubCIChecker("/repo", WithCICommandExecutor(&fakeExecutor{output: []byte(tt.output)}))

			status, err := checker.Status(context.Background(), "abc123")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantJobs, status.FailedJobs)
		})
	}
}

func TestGitHubCIChecker_Status_InvalidJSON(t *testing.T) {
	t.Parallel()

	checker := NewGitHubCIChecker("/repo", WithCICommandExecutor(&fakeExecutor{output: []byte("not json")}))

	_, err := checker.Status(context.Background(), "abc123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse workflow run JSON")
}

func TestGitHubCIChecker_Status_CommandError(t *testing.T) {
	t.Parallel()

	checker := NewGitHubCIChecker("/repo", WithCICommandExecutor(&fakeExecutor{err: testutil.ErrMockGHFailed}))

	_, err := checker.Status(context.Background(), "abc123")

	require.Error(t, err)
	require.ErrorIs(t, err, testutil.ErrMockGHFailed)
	assert.Contains(t, err.Error(), "failed to list workflow runs")
}

func TestGitHubCIChecker_Status_CanceledContext(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{output: []byte("[]")}
	checker := NewGitHubCIChecker("/repo", WithCICommandExecutor(exec))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := checker.Status(ctx, "abc123")

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, exec.calls)
}
