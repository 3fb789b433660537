// Package monitor synthesizes pipeline health from CI, performance, and
// security collaborators into a single verdict per attempt.
package monitor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/ctxutil"
	"github.com/mrz1836/remedy/internal/domain"
)

// CIStatus is a CI checker's answer for one commit.
type CIStatus struct {
	// Status is success, failure, or running.
	Status constants.Verdict

	// FailedJobs lists the jobs that failed, when any did.
	FailedJobs []string
}

// PerfStatus is a performance checker's answer.
type PerfStatus struct {
	// Passed reports whether performance tests passed.
	Passed bool

	// Regressions lists detected performance regressions.
	Regressions []string
}

// SecurityStatus is a security checker's answer.
type SecurityStatus struct {
	// Passed reports whether the security audit passed.
	Passed bool

	// Vulnerabilities is the number of findings.
	Vulnerabilities int
}

// CIStatusChecker queries the CI platform for a commit's pipeline state.
type CIStatusChecker interface {
	Status(ctx context.Context, commitID string) (CIStatus, error)
}

// PerformanceChecker queries the performance-test system.
type PerformanceChecker interface {
	Status(ctx context.Context) (PerfStatus, error)
}

// SecurityChecker queries the security-audit system.
type SecurityChecker interface {
	Status(ctx context.Context) (SecurityStatus, error)
}

// Engine combines the three collaborator verdicts into one
// MonitoringResult per check.
//
// Verdict synthesis: overall is failure if CI failed or performance
// failed; running if CI is still in progress; success otherwise.
// A security failure is recorded in the result but does not flip the
// overall verdict on its own.
type Engine struct {
	ci       CIStatusChecker
	perf     PerformanceChecker
	security SecurityChecker
	clk      clock.Clock
	logger   zerolog.Logger
}

// NewEngine creates a monitoring engine over the given collaborators.
func NewEngine(ci CIStatusChecker, perf PerformanceChecker, security SecurityChecker, clk clock.Clock, logger zerolog.Logger) *Engine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Engine{
		ci:       ci,
		perf:     perf,
		security: security,
		clk:      clk,
		logger:   logger,
	}
}

// Check performs one health check for commitID.
//
// A collaborator call error is degraded to a failure verdict for that
// subsystem rather than returned; the engine itself only fails on
// context cancellation.
func (e *Engine) Check(ctx context.Context, commitID string) (domain.MonitoringResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.MonitoringResult{}, err
	}

	start := e.clk.Now()
	result := domain.MonitoringResult{CommitID: commitID}

	ciStatus, err := e.ci.Status(ctx, commitID)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("commit_id", commitID).
			Msg("ci status check failed, recording failure verdict")
		result.CI = constants.VerdictFailure
	} else {
		result.CI = ciStatus.Status
		result.FailedJobs = ciStatus.FailedJobs
	}

	perfStatus, err := e.perf.Status(ctx)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("commit_id", commitID).
			Msg("performance status check failed, recording failure verdict")
		result.Performance = constants.VerdictFailure
	} else if perfStatus.Passed {
		result.Performance = constants.VerdictSuccess
	} else {
		result.Performance = constants.VerdictFailure
		result.Regressions = perfStatus.Regressions
	}

	secStatus, err := e.security.Status(ctx)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("commit_id", commitID).
			Msg("security status check failed, recording failure verdict")
		result.Security = constants.VerdictFailure
	} else if secStatus.Passed {
		result.Security = constants.VerdictSuccess
	} else {
		result.Security = constants.VerdictFailure
		result.Vulnerabilities = secStatus.Vulnerabilities
	}

	result.Overall = synthesize(result)
	result.CheckedAt = e.clk.Now()
	result.Duration = result.CheckedAt.Sub(start)

	e.logger.Debug().
		Str("commit_id", commitID).
		Str("overall", result.Overall.String()).
		Str("ci", result.CI.String()).
		Str("performance", result.Performance.String()).
		Str("security", result.Security.String()).
		Strs("failed_jobs", result.FailedJobs).
		Dur("duration", result.Duration).
		Msg("monitoring check complete")

	return result, nil
}

// synthesize derives the overall verdict from the subsystem verdicts.
// Security failures intentionally do not affect the overall verdict;
// they are surfaced through the result for escalation and reporting.
func synthesize(r domain.MonitoringResult) constants.Verdict {
	if r.CI == constants.VerdictFailure || r.Performance == constants.VerdictFailure {
		return constants.VerdictFailure
	}
	if r.CI == constants.VerdictRunning {
		return constants.VerdictRunning
	}
	return constants.VerdictSuccess
}
