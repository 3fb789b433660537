package constants

// SessionStatus represents the state of a remediation session in the
// remedy state machine. Status values use snake_case for JSON
// serialization compatibility.
type SessionStatus string

// Session status constants define the valid states a session can be in.
// These follow the state machine driven by the orchestrator:
//
//	Pending → Monitoring
//	Monitoring → Fixing, Waiting, Succeeded, Failed, Escalated
//	Fixing → Redeploying, Waiting, Failed, Escalated
//	Redeploying → Monitoring, Failed
//	Waiting → Monitoring, Failed
const (
	// SessionStatusPending indicates a session is created but the first
	// monitoring attempt has not started.
	SessionStatusPending SessionStatus = "pending"

	// SessionStatusMonitoring indicates the engine is querying pipeline health.
	SessionStatusMonitoring SessionStatus = "monitoring"

	// SessionStatusFixing indicates automatic fixes are being applied
	// and validated for the latest failure.
	SessionStatusFixing SessionStatus = "fixing"

	// SessionStatusRedeploying indicates a redeploy carrying validated
	// fixes is in flight.
	SessionStatusRedeploying SessionStatus = "redeploying"

	// SessionStatusWaiting indicates the session is backing off before
	// the next monitoring attempt.
	SessionStatusWaiting SessionStatus = "waiting"

	// SessionStatusSucceeded indicates the pipeline recovered and the run
	// finished successfully.
	SessionStatusSucceeded SessionStatus = "succeeded"

	// SessionStatusFailed indicates the run ended without recovery.
	SessionStatusFailed SessionStatus = "failed"

	// SessionStatusEscalated indicates the run was terminated by an
	// emergency or rollback escalation.
	SessionStatusEscalated SessionStatus = "escalated"
)

// String returns the string representation of the SessionStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s SessionStatus) String() string {
	return string(s)
}

// Verdict represents the synthesized health of the pipeline for one
// monitoring attempt.
type Verdict string

// Verdict constants define the overall and per-subsystem health values.
const (
	// VerdictSuccess indicates all gating checks passed.
	VerdictSuccess Verdict = "success"

	// VerdictFailure indicates at least one gating check failed.
	VerdictFailure Verdict = "failure"

	// VerdictRunning indicates CI is still in progress.
	VerdictRunning Verdict = "running"
)

// String returns the string representation of the Verdict.
func (v Verdict) String() string {
	return string(v)
}

// Severity represents how serious a classified failure is.
type Severity string

// Severity constants, ordered from least to most serious.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// Rank returns an integer ordering for severity comparisons.
// Higher is more serious. Unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// EscalationLevel represents how urgently a human must intervene.
type EscalationLevel string

// Escalation level constants, monotonic in severity.
// Emergency and rollback terminate the remediation loop.
const (
	EscalationNone      EscalationLevel = "none"
	EscalationWarning   EscalationLevel = "warning"
	EscalationEmergency EscalationLevel = "emergency"
	EscalationRollback  EscalationLevel = "rollback"
)

// String returns the string representation of the EscalationLevel.
func (l EscalationLevel) String() string {
	return string(l)
}

// Terminates reports whether this escalation level ends the run.
func (l EscalationLevel) Terminates() bool {
	return l == EscalationEmergency || l == EscalationRollback
}

// FailureCategory classifies the root cause of a pipeline failure.
type FailureCategory string

// Failure category constants produced by the analysis engine.
const (
	CategoryCompilation    FailureCategory = "compilation"
	CategoryTestFailure    FailureCategory = "test_failure"
	CategoryFlaky          FailureCategory = "flaky"
	CategoryInfrastructure FailureCategory = "infrastructure"
	CategoryInProgress     FailureCategory = "in_progress"
	CategoryUnknown        FailureCategory = "unknown"
)

// String returns the string representation of the FailureCategory.
func (c FailureCategory) String() string {
	return string(c)
}
