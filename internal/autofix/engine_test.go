package autofix

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
	"github.com/mrz1836/remedy/internal/testutil"
)

// fixedClock returns a constant time.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// stubProposer returns scripted candidates.
type stubProposer struct {
	candidates []CandidateFix
	err        error
}

func (p stubProposer) Propose(_ context.Context, _ domain.FailureAnalysis) ([]CandidateFix, error) {
	return p.candidates, p.err
}

// recordingApplier records applied and reverted fix types.
type recordingApplier struct {
	mu       sync.Mutex
	applied  []string
	reverted []string
	applyErr map[string]error
}

func (a *recordingApplier) Apply(_ context.Context, fix CandidateFix, _ domain.RemediationContext) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.applyErr[fix.Type]; err != nil {
		return err
	}
	a.applied = append(a.applied, fix.Type)
	return nil
}

func (a *recordingApplier) Revert(_ context.Context, fix domain.AppliedFix, _ domain.RemediationContext) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reverted = append(a.reverted, fix.Type)
	return nil
}

func flakyAnalysis() domain.FailureAnalysis {
	return domain.FailureAnalysis{
		Category:  constants.CategoryFlaky,
		Severity:  constants.SeverityLow,
		RootCause: "likely transient failure in flaky-e2e",
	}
}

func TestEngine_ApplyFixes_AppliesCandidatesAboveThreshold(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	applier := &recordingApplier{}
	engine := NewEngine(
		stubProposer{candidates: []CandidateFix{
			{Type: "retry_flaky", Confidence: 0.9, Description: "re-run transient failures"},
			{Type: "cache_purge", Confidence: 0.7},
		}},
		zerolog.Nop(),
		WithApplier(applier),
		WithClock(fixedClock{now: now}),
	)

	outcome, err := engine.ApplyFixes(context.Background(), flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	require.Len(t, outcome.Fixes, 1)
	assert.Equal(t, "retry_flaky", outcome.Fixes[0].Type)
	assert.Equal(t, "re-run transient failures", outcome.Fixes[0].Description)
	assert.InDelta(t, 0.9, outcome.Fixes[0].Confidence, 0.0001)
	assert.Equal(t, now, outcome.Fixes[0].AppliedAt)
	assert.Equal(t, []string{"retry_flaky"}, applier.applied)
}

func TestEngine_ApplyFixes_NoCandidateClearsThreshold(t *testing.T) {
	t.Parallel()

	engine := NewEngine(
		stubProposer{candidates: []CandidateFix{
			{Type: "quarantine_known_flakes", Confidence: 0.5},
		}},
		zerolog.Nop(),
	)

	outcome, err := engine.ApplyFixes(context.Background(), flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	// No automatic remedy is a valid outcome, not an error.
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Fixes)
}

func TestEngine_ApplyFixes_CustomThreshold(t *testing.T) {
	t.Parallel()

	applier := &recordingApplier{}
	engine := NewEngine(
		stubProposer{candidates: []CandidateFix{
			{Type: "retry_flaky", Confidence: 0.9},
			{Type: "cache_purge", Confidence: 0.7},
			{Type: "quarantine_known_flakes", Confidence: 0.5},
		}},
		zerolog.Nop(),
		WithApplier(applier),
		WithConfidenceThreshold(0.6),
	)

	outcome, err := engine.ApplyFixes(context.Background(), flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []string{"retry_flaky", "cache_purge"}, applier.applied)
}

func TestEngine_ApplyFixes_InProgressIsNoOp(t *testing.T) {
	t.Parallel()

	engine := NewEngine(
		stubProposer{candidates: []CandidateFix{{Type: "retry_flaky", Confidence: 0.9}}},
		zerolog.Nop(),
	)

	outcome, err := engine.ApplyFixes(context.Background(), domain.FailureAnalysis{
		Category: constants.CategoryInProgress,
		Severity: constants.SeverityLow,
	}, domain.RemediationContext{CommitID: "abc123"})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Fixes)
}

func TestEngine_ApplyFixes_ProposerError(t *testing.T) {
	t.Parallel()

	engine := NewEngine(stubProposer{err: testutil.ErrMockCommandFailed}, zerolog.Nop())

	_, err := engine.ApplyFixes(context.Background(), flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	require.Error(t, err)
	require.ErrorIs(t, err, testutil.ErrMockCommandFailed)
	assert.Contains(t, err.Error(), "failed to propose fixes")
}

func TestEngine_ApplyFixes_ApplierErrorIsFatal(t *testing.T) {
	t.Parallel()

	applier := &recordingApplier{applyErr: map[string]error{"cache_purge": testutil.ErrMockApplyFailed}}
	engine := NewEngine(
		stubProposer{candidates: []CandidateFix{
			{Type: "retry_flaky", Confidence: 0.9},
			{Type: "cache_purge", Confidence: 0.85},
		}},
		zerolog.Nop(),
		WithApplier(applier),
	)

	outcome, err := engine.ApplyFixes(context.Background(), flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	require.Error(t, err)
	require.ErrorIs(t, err, remerrors.ErrFixApplication)
	assert.Contains(t, err.Error(), "cache_purge")
	// The fix applied before the failure is still reported so the caller
	// can roll it back.
	require.Len(t, outcome.Fixes, 1)
	assert.Equal(t, "retry_flaky", outcome.Fixes[0].Type)
}

func TestEngine_ApplyFixes_CanceledContext(t *testing.T) {
	t.Parallel()

	engine := NewEngine(stubProposer{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ApplyFixes(ctx, flakyAnalysis(), domain.RemediationContext{CommitID: "abc123"})

	require.ErrorIs(t, err, context.Canceled)
}
