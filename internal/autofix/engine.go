package autofix

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/ctxutil"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// Applier carries out a candidate fix and can undo it later.
type Applier interface {
	// Apply performs the fix.
	Apply(ctx context.Context, fix CandidateFix, rctx domain.RemediationContext) error

	// Revert undoes a previously applied fix.
	Revert(ctx context.Context, fix domain.AppliedFix, rctx domain.RemediationContext) error
}

// LogApplier is an Applier that only records the action. It is the
// default when no real applier is wired; useful for dry runs and for
// fix types that are pure re-run requests carried by the redeploy.
type LogApplier struct {
	logger zerolog.Logger
}

// NewLogApplier creates a record-only applier.
func NewLogApplier(logger zerolog.Logger) *LogApplier {
	return &LogApplier{logger: logger}
}

// Apply records the fix without side effects.
func (a *LogApplier) Apply(_ context.Context, fix CandidateFix, rctx domain.RemediationContext) error {
	a.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("fix_type", fix.Type).
		Float64("confidence", fix.Confidence).
		Msg("recorded fix application")
	return nil
}

// Revert records the rollback without side effects.
func (a *LogApplier) Revert(_ context.Context, fix domain.AppliedFix, rctx domain.RemediationContext) error {
	a.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("fix_type", fix.Type).
		Msg("recorded fix rollback")
	return nil
}

// Engine selects and applies candidate fixes whose confidence clears
// the configured threshold.
type Engine struct {
	proposer  Proposer
	applier   Applier
	threshold float64
	clk       clock.Clock
	logger    zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithApplier sets the applier used to carry out fixes.
func WithApplier(a Applier) EngineOption {
	return func(e *Engine) { e.applier = a }
}

// WithConfidenceThreshold overrides the minimum confidence required
// before a candidate is auto-applied.
func WithConfidenceThreshold(t float64) EngineOption {
	return func(e *Engine) { e.threshold = t }
}

// WithClock sets the clock used for fix timestamps.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) { e.clk = c }
}

// NewEngine creates an auto-fix engine over the given proposer.
func NewEngine(proposer Proposer, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		proposer:  proposer,
		threshold: constants.DefaultConfidenceThreshold,
		clk:       clock.RealClock{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.applier == nil {
		e.applier = NewLogApplier(logger)
	}
	return e
}

// ApplyFixes applies every candidate for the analysis whose confidence
// clears the threshold, in proposal order.
//
// Zero candidates above the threshold is a valid outcome, not an error:
// the result carries Success=false and no fixes, and the caller proceeds
// to escalation. An applier error, by contrast, is returned and is fatal
// to the run.
func (e *Engine) ApplyFixes(ctx context.Context, analysis domain.FailureAnalysis, rctx domain.RemediationContext) (domain.FixOutcome, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.FixOutcome{}, err
	}

	// Nothing to fix while the pipeline is still running.
	if analysis.Category == constants.CategoryInProgress {
		return domain.FixOutcome{}, nil
	}

	candidates, err := e.proposer.Propose(ctx, analysis)
	if err != nil {
		return domain.FixOutcome{}, remerrors.Wrap(err, "failed to propose fixes")
	}

	outcome := domain.FixOutcome{}
	for _, candidate := range candidates {
		if candidate.Confidence < e.threshold {
			e.logger.Debug().
				Str("commit_id", rctx.CommitID).
				Str("fix_type", candidate.Type).
				Float64("confidence", candidate.Confidence).
				Float64("threshold", e.threshold).
				Msg("skipping fix below confidence threshold")
			continue
		}

		if err := e.applier.Apply(ctx, candidate, rctx); err != nil {
			return outcome, remerrors.Wrapf(remerrors.ErrFixApplication, "fix '%s': %s", candidate.Type, err)
		}

		outcome.Fixes = append(outcome.Fixes, domain.AppliedFix{
			Type:              candidate.Type,
			Description:       candidate.Description,
			AffectedResources: candidate.AffectedResources,
			Confidence:        candidate.Confidence,
			AppliedAt:         e.clk.Now().UTC(),
		})

		e.logger.Info().
			Str("commit_id", rctx.CommitID).
			Str("fix_type", candidate.Type).
			Str("category", analysis.Category.String()).
			Float64("confidence", candidate.Confidence).
			Msg("applied fix")
	}

	outcome.Success = len(outcome.Fixes) > 0
	return outcome, nil
}
