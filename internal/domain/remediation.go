// Package domain provides shared domain types for the remedy remediation system.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/mrz1836/remedy/internal/constants"
)

// RemediationContext identifies one remediation run.
// It is immutable for the life of the run.
type RemediationContext struct {
	// CommitID is the commit whose pipeline is being remediated.
	CommitID string `json:"commit_id"`

	// Branch is the branch the commit belongs to, when known.
	Branch string `json:"branch,omitempty"`

	// Metadata stores arbitrary key-value data supplied by the trigger
	// (git hook, webhook, API call).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MonitoringResult captures one pipeline health check.
// One result is produced per loop iteration and appended to the run's
// ordered, append-only history.
//
// Example JSON representation:
//
//	{
//	    "commit_id": "abc123",
//	    "overall": "failure",
//	    "ci": "failure",
//	    "performance": "success",
//	    "security": "success",
//	    "failed_jobs": ["build", "unit-tests"],
//	    "checked_at": "2026-08-28T10:00:00Z",
//	    "duration": 1200000000
//	}
type MonitoringResult struct {
	// CommitID is the commit this check was performed for.
	CommitID string `json:"commit_id"`

	// Overall is the synthesized verdict across all subsystems.
	Overall constants.Verdict `json:"overall"`

	// CI is the continuous-integration subsystem verdict.
	CI constants.Verdict `json:"ci"`

	// Performance is the performance-test subsystem verdict.
	Performance constants.Verdict `json:"performance"`

	// Security is the security-audit subsystem verdict. A security
	// failure is recorded here but does not flip Overall on its own.
	Security constants.Verdict `json:"security"`

	// FailedJobs lists the names of jobs that failed, when CI reported any.
	FailedJobs []string `json:"failed_jobs,omitempty"`

	// Vulnerabilities is the count reported by the security audit.
	Vulnerabilities int `json:"vulnerabilities,omitempty"`

	// Regressions lists performance regressions reported by the perf check.
	Regressions []string `json:"regressions,omitempty"`

	// CheckedAt is when this check completed.
	CheckedAt time.Time `json:"checked_at"`

	// Duration is how long the check took end to end.
	Duration time.Duration `json:"duration"`
}

// FailureAnalysis classifies a failing MonitoringResult.
// It is ephemeral: recomputed each iteration and never persisted beyond
// the iteration that produced it.
type FailureAnalysis struct {
	// Category is the classified failure kind (compilation, test_failure,
	// flaky, infrastructure, in_progress, unknown).
	Category constants.FailureCategory `json:"category"`

	// Severity is how serious the failure is.
	Severity constants.Severity `json:"severity"`

	// RootCause is a free-text summary of the most likely cause.
	RootCause string `json:"root_cause"`

	// MatchedJobs are the failed job names that drove the classification.
	MatchedJobs []string `json:"matched_jobs,omitempty"`
}

// AppliedFix describes one remediation action that was applied.
type AppliedFix struct {
	// Type identifies the kind of fix (e.g., "retry_flaky", "cache_purge").
	Type string `json:"type"`

	// Description is a human-readable summary of what the fix did.
	Description string `json:"description"`

	// AffectedResources lists files, jobs, or services touched by the fix.
	AffectedResources []string `json:"affected_resources,omitempty"`

	// Confidence is the score (0..1) the fix carried when selected.
	Confidence float64 `json:"confidence"`

	// AppliedAt is when the fix was applied.
	AppliedAt time.Time `json:"applied_at"`
}

// FixOutcome aggregates the fixes applied during one attempt.
// Success is false when no candidate cleared the confidence threshold;
// that is a valid "no automatic remedy" outcome, not an error.
type FixOutcome struct {
	// Success reports whether at least one fix was applied.
	Success bool `json:"success"`

	// Fixes are the fixes applied this attempt, in application order.
	Fixes []AppliedFix `json:"fixes,omitempty"`
}

// EscalationDecision is the escalation policy's answer for one attempt.
type EscalationDecision struct {
	// Level is the escalation tier. Emergency and rollback terminate
	// the run; warning is advisory only.
	Level constants.EscalationLevel `json:"level"`

	// Reason explains the decision in human-readable form.
	Reason string `json:"reason"`

	// Attempt is the attempt number that triggered the decision.
	Attempt int `json:"attempt"`

	// History is the monitoring history available when the decision
	// was made.
	History []MonitoringResult `json:"history,omitempty"`
}

// DeployResult is the outcome of triggering a redeploy.
type DeployResult struct {
	// Success reports whether the redeploy was triggered successfully.
	Success bool `json:"success"`

	// DeploymentID identifies the new deployment, when available.
	DeploymentID string `json:"deployment_id,omitempty"`

	// TriggeredAt is when the redeploy was initiated.
	TriggeredAt time.Time `json:"triggered_at"`
}

// RemediationResult is the terminal output of a run. The caller always
// receives one of these; failure modes are normalized into Success=false
// plus a human-readable Error string.
//
// Example JSON representation:
//
//	{
//	    "success": false,
//	    "commit_id": "abc123",
//	    "session_id": "rem-1a2b3c4d",
//	    "attempts": 3,
//	    "history": [...],
//	    "error": "max attempts exceeded"
//	}
type RemediationResult struct {
	// Success reports whether the pipeline recovered.
	Success bool `json:"success"`

	// CommitID is the commit the run remediated.
	CommitID string `json:"commit_id"`

	// SessionID identifies the session record for this run.
	SessionID string `json:"session_id"`

	// Attempts is the number of monitoring attempts consumed.
	Attempts int `json:"attempts"`

	// History is the full ordered monitoring history for the run.
	History []MonitoringResult `json:"history"`

	// FixesApplied lists every fix that was applied and kept
	// (rolled-back fixes are excluded).
	FixesApplied []AppliedFix `json:"fixes_applied,omitempty"`

	// Error carries the terminal error or escalation reason for a
	// failed run. Empty on success.
	Error string `json:"error,omitempty"`
}
