// Package escalate decides whether and how urgently a failing
// remediation run must be handed to a human operator.
package escalate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/analysis"
	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
)

// Engine applies the escalation policy. It is consulted on every
// non-successful iteration, not only at the final attempt, so it can
// terminate a run before the attempt budget is spent.
//
// Policy inputs: attempt count vs the budget, severity trend across the
// monitoring history, and elapsed wall-clock time. Levels are monotonic:
// none < warning < emergency < rollback.
type Engine struct {
	analyzer     *analysis.Engine
	maxAttempts  int
	warnAttempts int
	maxElapsed   time.Duration
	clk          clock.Clock
	notifier     Notifier
	logger       zerolog.Logger
}

// EngineOption configures an escalation Engine.
type EngineOption func(*Engine)

// WithWarnAttempts sets the attempt count at which a warning is raised.
func WithWarnAttempts(n int) EngineOption {
	return func(e *Engine) { e.warnAttempts = n }
}

// WithMaxElapsed sets the wall-clock ceiling before an emergency is raised.
func WithMaxElapsed(d time.Duration) EngineOption {
	return func(e *Engine) { e.maxElapsed = d }
}

// WithClock sets the clock used for elapsed-time checks.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) { e.clk = c }
}

// WithNotifier sets the notifier that delivers decisions.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates an escalation engine.
// The default warn threshold is maxAttempts-1; the default elapsed
// ceiling is constants.DefaultMaxElapsed.
func NewEngine(analyzer *analysis.Engine, maxAttempts int, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		analyzer:     analyzer,
		maxAttempts:  maxAttempts,
		warnAttempts: maxAttempts - 1,
		maxElapsed:   constants.DefaultMaxElapsed,
		clk:          clock.RealClock{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = NewLogNotifier(logger)
	}
	return e
}

// Evaluate produces an escalation decision for the given attempt.
// The decision is delivered to the configured notifier before it is
// returned so operators see causality in order.
func (e *Engine) Evaluate(ctx context.Context, rctx domain.RemediationContext, attempts int, reason string, history []domain.MonitoringResult) domain.EscalationDecision {
	decision := domain.EscalationDecision{
		Level:   constants.EscalationNone,
		Attempt: attempts,
		History: history,
	}

	switch {
	case e.severityIsCriticalAndHolding(history):
		decision.Level = constants.EscalationRollback
		decision.Reason = fmt.Sprintf("critical failure not improving after %d attempts: %s", attempts, reason)
	case e.elapsedExceeded(history):
		decision.Level = constants.EscalationEmergency
		decision.Reason = fmt.Sprintf("remediation exceeded %s without recovery: %s", e.maxElapsed, reason)
	case attempts >= e.warnAttempts:
		decision.Level = constants.EscalationWarning
		decision.Reason = fmt.Sprintf("attempt %d of %d failed: %s", attempts, e.maxAttempts, reason)
	default:
		decision.Reason = reason
	}

	e.logger.Debug().
		Str("commit_id", rctx.CommitID).
		Int("attempt", attempts).
		Str("level", decision.Level.String()).
		Str("reason", decision.Reason).
		Msg("escalation evaluated")

	e.notifier.Notify(ctx, rctx, decision)

	return decision
}

// severityIsCriticalAndHolding reports whether the latest failure is
// critical and severity did not improve since the previous attempt.
// Classification is deterministic, so re-deriving it from history gives
// the same answer the fix path saw.
func (e *Engine) severityIsCriticalAndHolding(history []domain.MonitoringResult) bool {
	if len(history) == 0 {
		return false
	}
	latest := e.analyzer.Analyze(history[len(history)-1])
	if latest.Severity != constants.SeverityCritical {
		return false
	}
	if len(history) == 1 {
		return true
	}
	previous := e.analyzer.Analyze(history[len(history)-2])
	return previous.Severity.Rank() <= latest.Severity.Rank()
}

// elapsedExceeded reports whether wall-clock time since the first check
// passed the configured ceiling.
func (e *Engine) elapsedExceeded(history []domain.MonitoringResult) bool {
	if len(history) == 0 || e.maxElapsed <= 0 {
		return false
	}
	return e.clk.Now().Sub(history[0].CheckedAt) > e.maxElapsed
}
