package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/ctxutil"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
	"github.com/mrz1836/remedy/internal/store"
)

// Monitor performs one pipeline health check per attempt.
type Monitor interface {
	Check(ctx context.Context, commitID string) (domain.MonitoringResult, error)
}

// Analyzer classifies a failing monitoring result.
type Analyzer interface {
	Analyze(result domain.MonitoringResult) domain.FailureAnalysis
}

// Fixer applies candidate fixes for an analysis.
type Fixer interface {
	ApplyFixes(ctx context.Context, analysis domain.FailureAnalysis, rctx domain.RemediationContext) (domain.FixOutcome, error)
}

// FixValidator re-verifies applied fixes and rolls them back on failure.
type FixValidator interface {
	Validate(ctx context.Context, fixes []domain.AppliedFix, analysis domain.FailureAnalysis, rctx domain.RemediationContext) bool
	Rollback(ctx context.Context, fixes []domain.AppliedFix, rctx domain.RemediationContext)
}

// Deployer triggers a redeploy carrying validated fixes.
type Deployer interface {
	Redeploy(ctx context.Context, rctx domain.RemediationContext, outcome domain.FixOutcome) (domain.DeployResult, error)
}

// Escalator decides whether a failing run must be handed to an operator.
type Escalator interface {
	Evaluate(ctx context.Context, rctx domain.RemediationContext, attempts int, reason string, history []domain.MonitoringResult) domain.EscalationDecision
}

// Sessions persists session records.
type Sessions interface {
	Create(ctx context.Context, session *domain.Session) error
	Update(ctx context.Context, session *domain.Session) error
}

// Config bounds the remediation loop.
type Config struct {
	// MaxAttempts is the monitoring attempt budget for one run.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt. The delay
	// before attempt n+1 is BaseDelay * 2^(n-1).
	BaseDelay time.Duration
}

// DefaultConfig returns the documented loop defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: constants.DefaultMaxAttempts,
		BaseDelay:   constants.DefaultBaseDelay,
	}
}

// Orchestrator owns the remediation loop and the session record for
// each run. It is safe for concurrent use; concurrent Run calls for the
// same commit coalesce onto a single execution.
type Orchestrator struct {
	monitor   Monitor
	analyzer  Analyzer
	fixer     Fixer
	validator FixValidator
	deployer  Deployer
	escalator Escalator
	sessions  Sessions
	config    Config
	clk       clock.Clock
	metrics   Metrics
	success   SuccessHandler
	logger    zerolog.Logger

	// group dedupes concurrent runs per commit id. Two triggers firing
	// for the same commit share one loop and one session record.
	group singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used for timestamps and backoff waits.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clk = c }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithSuccessHandler sets the terminal-success handler.
func WithSuccessHandler(h SuccessHandler) Option {
	return func(o *Orchestrator) { o.success = h }
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(
	mon Monitor,
	analyzer Analyzer,
	fixer Fixer,
	validator FixValidator,
	deployer Deployer,
	escalator Escalator,
	sessions Sessions,
	cfg Config,
	logger zerolog.Logger,
	opts ...Option,
) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = constants.DefaultBaseDelay
	}

	o := &Orchestrator{
		monitor:   mon,
		analyzer:  analyzer,
		fixer:     fixer,
		validator: validator,
		deployer:  deployer,
		escalator: escalator,
		sessions:  sessions,
		config:    cfg,
		clk:       clock.RealClock{},
		metrics:   NoopMetrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.success == nil {
		o.success = NewLogSuccessHandler(o.logger)
	}
	return o
}

// Run executes the remediation loop for one commit.
//
// The returned error is non-nil only for context cancellation or
// invalid input. Every pipeline failure mode is normalized into the
// RemediationResult: Success=false plus a human-readable Error string.
func (o *Orchestrator) Run(ctx context.Context, rctx domain.RemediationContext) (*domain.RemediationResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if rctx.CommitID == "" {
		return nil, fmt.Errorf("commit id %w", remerrors.ErrEmptyValue)
	}

	value, err, _ := o.group.Do(rctx.CommitID, func() (any, error) {
		return o.run(ctx, rctx)
	})
	if err != nil {
		return nil, err
	}
	result, ok := value.(*domain.RemediationResult)
	if !ok {
		return nil, fmt.Errorf("unexpected run result type %T", value)
	}
	return result, nil
}

// run is the single-flighted loop body.
func (o *Orchestrator) run(ctx context.Context, rctx domain.RemediationContext) (*domain.RemediationResult, error) {
	logger := o.logger.With().
		Str("commit_id", rctx.CommitID).
		Logger()

	session := &domain.Session{
		ID:        store.GenerateSessionID(),
		Status:    constants.SessionStatusPending,
		Context:   rctx,
		StartedAt: o.clk.Now().UTC(),
	}
	logger = logger.With().Str("session_id", session.ID).Logger()

	if err := o.sessions.Create(ctx, session); err != nil {
		// Store unavailable at run start is terminal with no session to
		// record it in; normalize into the result anyway.
		logger.Error().Err(err).Msg("failed to create session record")
		return &domain.RemediationResult{
			CommitID:  rctx.CommitID,
			SessionID: session.ID,
			Error:     err.Error(),
		}, nil
	}

	logger.Info().
		Int("max_attempts", o.config.MaxAttempts).
		Dur("base_delay", o.config.BaseDelay).
		Msg("remediation run started")

	result, runErr := o.runLoop(ctx, rctx, session, logger)
	if runErr != nil {
		// Context cancellation: mark the session failed on a best-effort
		// basis, then surface the cancellation to the caller.
		o.finishSession(context.WithoutCancel(ctx), session, constants.SessionStatusFailed, "run canceled: "+runErr.Error(), logger)
		return nil, runErr
	}

	o.metrics.ObserveRunDuration(rctx.CommitID, o.clk.Now().Sub(session.StartedAt), result.Success)

	return result, nil
}

// runLoop drives the bounded attempt loop. It returns an error only for
// context cancellation; every other outcome is a RemediationResult.
func (o *Orchestrator) runLoop(ctx context.Context, rctx domain.RemediationContext, session *domain.Session, logger zerolog.Logger) (*domain.RemediationResult, error) {
	attempts := 0

	for attempts < o.config.MaxAttempts {
		attempts++
		o.metrics.IncAttempts(rctx.CommitID)

		if err := o.transitionAndPersist(ctx, session, constants.SessionStatusMonitoring, fmt.Sprintf("attempt %d", attempts)); err != nil {
			return o.handleStateError(ctx, session, attempts, err, logger)
		}

		checkResult, err := o.monitor.Check(ctx, rctx.CommitID)
		if err != nil {
			if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
				return nil, ctxErr
			}
			// The engine degrades individual collaborator failures, so an
			// error here means monitoring itself is broken. There is
			// nothing to classify or fix; the run ends here.
			logger.Error().Err(err).Int("attempt", attempts).Msg("monitoring check failed")
			result := o.buildResult(session, false, err.Error())
			o.finishSession(ctx, session, constants.SessionStatusFailed, result.Error, logger)
			return result, nil
		}

		session.History = append(session.History, checkResult)
		session.Attempts = len(session.History)
		if err := o.sessions.Update(ctx, session); err != nil {
			return o.handleStateError(ctx, session, attempts, err, logger)
		}

		logger.Info().
			Int("attempt", attempts).
			Str("verdict", checkResult.Overall.String()).
			Strs("failed_jobs", checkResult.FailedJobs).
			Msg("monitoring attempt complete")

		if checkResult.Overall == constants.VerdictSuccess {
			return o.finishSuccess(ctx, rctx, session, attempts, logger), nil
		}

		analysis := o.analyzer.Analyze(checkResult)
		logger.Debug().
			Int("attempt", attempts).
			Str("category", analysis.Category.String()).
			Str("severity", analysis.Severity.String()).
			Str("root_cause", analysis.RootCause).
			Msg("failure classified")

		redeployed, result, err := o.attemptFix(ctx, rctx, session, analysis, attempts, logger)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		if redeployed {
			// A validated fix went out; re-check immediately without
			// consulting escalation or backing off.
			continue
		}

		decision := o.escalator.Evaluate(ctx, rctx, attempts, analysis.RootCause, session.History)
		if decision.Level != constants.EscalationNone {
			o.metrics.IncEscalations(rctx.CommitID, decision.Level.String())
		}
		if decision.Level.Terminates() {
			return o.finishEscalated(ctx, session, attempts, decision, logger), nil
		}

		if attempts < o.config.MaxAttempts {
			delay := backoffDelay(o.config.BaseDelay, attempts)
			if err := o.transitionAndPersist(ctx, session, constants.SessionStatusWaiting, fmt.Sprintf("backoff %s before attempt %d", delay, attempts+1)); err != nil {
				return o.handleStateError(ctx, session, attempts, err, logger)
			}
			logger.Info().
				Int("attempt", attempts).
				Dur("delay", delay).
				Msg("backing off before next attempt")
			if err := o.clk.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	// Attempt budget exhausted: one final escalation evaluation for
	// audit and notification, then the terminal result.
	o.escalator.Evaluate(ctx, rctx, attempts, remerrors.ErrMaxAttemptsExceeded.Error(), session.History)

	result := o.buildResult(session, false, remerrors.ErrMaxAttemptsExceeded.Error())
	o.finishSession(ctx, session, constants.SessionStatusFailed, result.Error, logger)

	logger.Warn().
		Int("attempts", session.Attempts).
		Msg("remediation abandoned, attempt budget exhausted")

	return result, nil
}

// attemptFix runs the fix, validate, redeploy sub-path for one failing
// attempt. It returns redeployed=true when a validated fix shipped and
// the loop should re-check immediately, a non-nil result when the run
// ended terminally, or both zero values when the caller should proceed
// to escalation.
func (o *Orchestrator) attemptFix(ctx context.Context, rctx domain.RemediationContext, session *domain.Session, analysis domain.FailureAnalysis, attempts int, logger zerolog.Logger) (bool, *domain.RemediationResult, error) {
	outcome, err := o.fixer.ApplyFixes(ctx, analysis, rctx)
	if err != nil {
		if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
			return false, nil, ctxErr
		}
		// Fix engine errors are fatal to the run, not retried.
		logger.Error().Err(err).Int("attempt", attempts).Msg("fix application failed")
		result := o.buildResult(session, false, err.Error())
		o.finishSession(ctx, session, constants.SessionStatusFailed, result.Error, logger)
		return false, result, nil
	}

	if !outcome.Success {
		// No automatic remedy cleared the threshold; proceed to escalation.
		return false, nil, nil
	}

	if err := o.transitionAndPersist(ctx, session, constants.SessionStatusFixing, fmt.Sprintf("%d fixes applied for %s", len(outcome.Fixes), analysis.Category)); err != nil {
		r, rerr := o.handleStateError(ctx, session, attempts, err, logger)
		return false, r, rerr
	}

	if !o.validator.Validate(ctx, outcome.Fixes, analysis, rctx) {
		logger.Warn().
			Int("attempt", attempts).
			Int("fixes", len(outcome.Fixes)).
			Msg("fix validation failed, rolling back")
		o.validator.Rollback(ctx, outcome.Fixes, rctx)
		o.metrics.IncRollbacks(rctx.CommitID)
		return false, nil, nil
	}

	if err := o.transitionAndPersist(ctx, session, constants.SessionStatusRedeploying, "fixes validated"); err != nil {
		r, rerr := o.handleStateError(ctx, session, attempts, err, logger)
		return false, r, rerr
	}

	deployResult, err := o.deployer.Redeploy(ctx, rctx, outcome)
	if err != nil {
		if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
			return false, nil, ctxErr
		}
		// A failed redeploy is fatal; the orchestrator never retries it.
		logger.Error().Err(err).Int("attempt", attempts).Msg("redeploy failed")
		result := o.buildResult(session, false, err.Error())
		o.finishSession(ctx, session, constants.SessionStatusFailed, result.Error, logger)
		return false, result, nil
	}

	session.FixesApplied = append(session.FixesApplied, outcome.Fixes...)
	o.metrics.IncFixesApplied(rctx.CommitID, len(outcome.Fixes))
	if err := o.sessions.Update(ctx, session); err != nil {
		r, rerr := o.handleStateError(ctx, session, attempts, err, logger)
		return false, r, rerr
	}

	logger.Info().
		Int("attempt", attempts).
		Int("fixes", len(outcome.Fixes)).
		Str("deployment_id", deployResult.DeploymentID).
		Msg("validated fixes redeployed")

	return true, nil, nil
}

// finishSuccess finalizes a recovered run and invokes the success
// handler exactly once.
func (o *Orchestrator) finishSuccess(ctx context.Context, rctx domain.RemediationContext, session *domain.Session, attempts int, logger zerolog.Logger) *domain.RemediationResult {
	result := o.buildResult(session, true, "")
	o.finishSession(ctx, session, constants.SessionStatusSucceeded, fmt.Sprintf("recovered on attempt %d", attempts), logger)

	// Handler failures are the handler's own concern; nothing it does
	// can flip the run's success flag.
	o.success.HandleSuccess(ctx, rctx, result, session.History)

	return result
}

// finishEscalated finalizes a run terminated by emergency or rollback.
func (o *Orchestrator) finishEscalated(ctx context.Context, session *domain.Session, attempts int, decision domain.EscalationDecision, logger zerolog.Logger) *domain.RemediationResult {
	logger.Warn().
		Int("attempt", attempts).
		Str("level", decision.Level.String()).
		Str("reason", decision.Reason).
		Msg("run terminated by escalation")

	result := o.buildResult(session, false, decision.Reason)
	o.finishSession(ctx, session, constants.SessionStatusEscalated, decision.Reason, logger)
	return result
}

// handleStateError normalizes a session-store failure into a terminal
// result, unless the context was canceled.
func (o *Orchestrator) handleStateError(ctx context.Context, session *domain.Session, attempts int, err error, logger zerolog.Logger) (*domain.RemediationResult, error) {
	if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
		return nil, ctxErr
	}
	logger.Error().Err(err).Int("attempt", attempts).Msg("session state update failed")
	result := o.buildResult(session, false, err.Error())
	o.finishSession(ctx, session, constants.SessionStatusFailed, result.Error, logger)
	return result, nil
}

// finishSession moves the session to a terminal status and persists it
// on a best-effort basis. By this point the result is already built, so
// persistence failures are logged rather than surfaced.
func (o *Orchestrator) finishSession(ctx context.Context, session *domain.Session, status constants.SessionStatus, reason string, logger zerolog.Logger) {
	if session.Terminal() {
		return
	}
	if err := transition(ctx, o.clk, session, status, reason); err != nil {
		logger.Error().Err(err).Msg("failed to finalize session status")
		return
	}

	now := o.clk.Now().UTC()
	session.EndedAt = &now
	session.Duration = now.Sub(session.StartedAt)
	if status != constants.SessionStatusSucceeded {
		session.LastError = reason
	}

	if err := o.sessions.Update(ctx, session); err != nil {
		logger.Error().Err(err).Msg("failed to persist terminal session state")
	}
}

// transitionAndPersist records a status change and persists the session
// so external observers can read progress mid-run.
func (o *Orchestrator) transitionAndPersist(ctx context.Context, session *domain.Session, status constants.SessionStatus, reason string) error {
	if err := transition(ctx, o.clk, session, status, reason); err != nil {
		return err
	}
	return o.sessions.Update(ctx, session)
}

// buildResult snapshots the session into a RemediationResult.
func (o *Orchestrator) buildResult(session *domain.Session, success bool, errMsg string) *domain.RemediationResult {
	history := make([]domain.MonitoringResult, len(session.History))
	copy(history, session.History)
	fixes := make([]domain.AppliedFix, len(session.FixesApplied))
	copy(fixes, session.FixesApplied)

	return &domain.RemediationResult{
		Success:      success,
		CommitID:     session.Context.CommitID,
		SessionID:    session.ID,
		Attempts:     session.Attempts,
		History:      history,
		FixesApplied: fixes,
		Error:        errMsg,
	}
}

// backoffDelay computes the exponential backoff before the next attempt:
// baseDelay * 2^(attempts-1), so with a 30s base the waits run 30s, 60s,
// 120s after attempts 1, 2, 3.
func backoffDelay(base time.Duration, attempts int) time.Duration {
	delay := base
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}
