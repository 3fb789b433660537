package remediation

import "time"

// Metrics records remediation loop activity for observability.
// Implementations must be safe for concurrent use across runs.
type Metrics interface {
	// IncAttempts counts one monitoring attempt.
	IncAttempts(commitID string)

	// IncFixesApplied counts fixes applied and kept.
	IncFixesApplied(commitID string, n int)

	// IncRollbacks counts one rollback of applied fixes.
	IncRollbacks(commitID string)

	// IncEscalations counts one raised escalation at the given level.
	IncEscalations(commitID, level string)

	// ObserveRunDuration records the total wall-clock time of a run.
	ObserveRunDuration(commitID string, d time.Duration, success bool)
}

// NoopMetrics discards all measurements. It is the default when no
// metrics backend is wired.
type NoopMetrics struct{}

// IncAttempts does nothing.
func (NoopMetrics) IncAttempts(string) {}

// IncFixesApplied does nothing.
func (NoopMetrics) IncFixesApplied(string, int) {}

// IncRollbacks does nothing.
func (NoopMetrics) IncRollbacks(string) {}

// IncEscalations does nothing.
func (NoopMetrics) IncEscalations(string, string) {}

// ObserveRunDuration does nothing.
func (NoopMetrics) ObserveRunDuration(string, time.Duration, bool) {}

// Ensure NoopMetrics implements Metrics.
var _ Metrics = NoopMetrics{}
