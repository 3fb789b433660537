package autofix

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/ctxutil"
	"github.com/mrz1836/remedy/internal/domain"
)

// Prober re-derives whether the failure condition a fix targeted is
// resolved. It must not trigger a redeploy; that is the orchestrator's
// job after validation succeeds.
type Prober interface {
	Probe(ctx context.Context, analysis domain.FailureAnalysis, rctx domain.RemediationContext) (bool, error)
}

// ConfidenceProber accepts fixes without an external probe. It treats
// high-confidence categories of fix as self-validating; categories the
// catalog marks risky would need a command-backed prober instead.
type ConfidenceProber struct{}

// Probe reports the failure resolved for fix categories that are
// deterministic re-run requests, and unresolved for everything else.
func (ConfidenceProber) Probe(_ context.Context, analysis domain.FailureAnalysis, _ domain.RemediationContext) (bool, error) {
	switch analysis.Category {
	case constants.CategoryFlaky, constants.CategoryInfrastructure:
		return true, nil
	default:
		return false, nil
	}
}

// Validator re-verifies applied fixes and rolls them back when they do
// not hold.
type Validator struct {
	prober  Prober
	applier Applier
	logger  zerolog.Logger
}

// NewValidator creates a validator using the given prober and the
// applier whose fixes it may need to revert.
func NewValidator(prober Prober, applier Applier, logger zerolog.Logger) *Validator {
	if prober == nil {
		prober = ConfidenceProber{}
	}
	return &Validator{prober: prober, applier: applier, logger: logger}
}

// Validate reports whether the applied fixes resolve the analyzed
// failure. A prober error counts as validation failure rather than a
// run-fatal error; the orchestrator then rolls back and escalates.
func (v *Validator) Validate(ctx context.Context, fixes []domain.AppliedFix, analysis domain.FailureAnalysis, rctx domain.RemediationContext) bool {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false
	}
	if len(fixes) == 0 {
		return false
	}

	resolved, err := v.prober.Probe(ctx, analysis, rctx)
	if err != nil {
		v.logger.Warn().
			Err(err).
			Str("commit_id", rctx.CommitID).
			Str("category", analysis.Category.String()).
			Msg("fix validation probe failed, treating fixes as invalid")
		return false
	}

	v.logger.Debug().
		Str("commit_id", rctx.CommitID).
		Int("fixes", len(fixes)).
		Bool("resolved", resolved).
		Msg("fix validation complete")

	return resolved
}

// Rollback reverts the applied fixes in reverse order. It never returns
// an error: revert failures are logged and the run proceeds to
// escalation regardless.
func (v *Validator) Rollback(ctx context.Context, fixes []domain.AppliedFix, rctx domain.RemediationContext) {
	for i := len(fixes) - 1; i >= 0; i-- {
		fix := fixes[i]
		if err := v.applier.Revert(ctx, fix, rctx); err != nil {
			v.logger.Error().
				Err(err).
				Str("commit_id", rctx.CommitID).
				Str("fix_type", fix.Type).
				Msg("fix rollback failed, continuing")
			continue
		}
		v.logger.Info().
			Str("commit_id", rctx.CommitID).
			Str("fix_type", fix.Type).
			Msg("rolled back fix")
	}
}
