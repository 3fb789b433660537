package remediation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/domain"
)

// SuccessHandler performs terminal-success side effects.
// It is invoked exactly once per successful run, after the success
// verdict but before the orchestrator returns. Failures inside the
// handler must never flip the run's success flag.
type SuccessHandler interface {
	HandleSuccess(ctx context.Context, rctx domain.RemediationContext, result *domain.RemediationResult, history []domain.MonitoringResult)
}

// LogSuccessHandler records the recovery in the structured log.
// It is the default handler; deployments wire richer handlers
// (notifications, bookkeeping) behind the same interface.
type LogSuccessHandler struct {
	logger zerolog.Logger
}

// NewLogSuccessHandler creates a log-only success handler.
func NewLogSuccessHandler(logger zerolog.Logger) *LogSuccessHandler {
	return &LogSuccessHandler{logger: logger}
}

// HandleSuccess logs the recovered run.
func (h *LogSuccessHandler) HandleSuccess(_ context.Context, rctx domain.RemediationContext, result *domain.RemediationResult, history []domain.MonitoringResult) {
	h.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("session_id", result.SessionID).
		Int("attempts", result.Attempts).
		Int("checks", len(history)).
		Int("fixes_applied", len(result.FixesApplied)).
		Msg("pipeline recovered")
}

// Ensure LogSuccessHandler implements SuccessHandler.
var _ SuccessHandler = (*LogSuccessHandler)(nil)
