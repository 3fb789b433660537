package pipeline

import (
	"context"
	"time"

	"github.com/mrz1836/remedy/internal/deploy"
	"github.com/mrz1836/remedy/internal/domain"
	"github.com/mrz1836/remedy/internal/monitor"
)

// TimeoutCIChecker bounds each CI status query with a timeout.
type TimeoutCIChecker struct {
	inner   monitor.CIStatusChecker
	timeout time.Duration
}

// NewTimeoutCIChecker wraps checker so every query is bounded by timeout.
// A non-positive timeout returns the checker unwrapped.
func NewTimeoutCIChecker(checker monitor.CIStatusChecker, timeout time.Duration) monitor.CIStatusChecker {
	if timeout <= 0 {
		return checker
	}
	return &TimeoutCIChecker{inner: checker, timeout: timeout}
}

// Status queries the wrapped checker under a deadline.
func (c *TimeoutCIChecker) Status(ctx context.Context, commitID string) (monitor.CIStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Status(ctx, commitID)
}

// TimeoutPerformanceChecker bounds each performance query with a timeout.
type TimeoutPerformanceChecker struct {
	inner   monitor.PerformanceChecker
	timeout time.Duration
}

// NewTimeoutPerformanceChecker wraps checker so every query is bounded
// by timeout. A non-positive timeout returns the checker unwrapped.
func NewTimeoutPerformanceChecker(checker monitor.PerformanceChecker, timeout time.Duration) monitor.PerformanceChecker {
	if timeout <= 0 {
		return checker
	}
	return &TimeoutPerformanceChecker{inner: checker, timeout: timeout}
}

// Status queries the wrapped checker under a deadline.
func (c *TimeoutPerformanceChecker) Status(ctx context.Context) (monitor.PerfStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Status(ctx)
}

// TimeoutSecurityChecker bounds each security query with a timeout.
type TimeoutSecurityChecker struct {
	inner   monitor.SecurityChecker
	timeout time.Duration
}

// NewTimeoutSecurityChecker wraps checker so every query is bounded by
// timeout. A non-positive timeout returns the checker unwrapped.
func NewTimeoutSecurityChecker(checker monitor.SecurityChecker, timeout time.Duration) monitor.SecurityChecker {
	if timeout <= 0 {
		return checker
	}
	return &TimeoutSecurityChecker{inner: checker, timeout: timeout}
}

// Status queries the wrapped checker under a deadline.
func (c *TimeoutSecurityChecker) Status(ctx context.Context) (monitor.SecurityStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Status(ctx)
}

// TimeoutDeployTrigger bounds each redeploy trigger with a timeout.
type TimeoutDeployTrigger struct {
	inner   deploy.Trigger
	timeout time.Duration
}

// NewTimeoutDeployTrigger wraps trigger so every redeploy is bounded by
// timeout. A non-positive timeout returns the trigger unwrapped.
func NewTimeoutDeployTrigger(trigger deploy.Trigger, timeout time.Duration) deploy.Trigger {
	if timeout <= 0 {
		return trigger
	}
	return &TimeoutDeployTrigger{inner: trigger, timeout: timeout}
}

// Trigger runs the wrapped trigger under a deadline.
func (tr *TimeoutDeployTrigger) Trigger(ctx context.Context, commitID string, fixes []domain.AppliedFix) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tr.timeout)
	defer cancel()
	return tr.inner.Trigger(ctx, commitID, fixes)
}
