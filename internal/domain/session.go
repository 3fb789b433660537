package domain

import (
	"time"

	"github.com/mrz1836/remedy/internal/constants"
)

// Session is the orchestrator's persisted view of a remediation run,
// keyed by session identifier. It is created at run start, updated after
// every state change, and never deleted by the core (cleanup is an
// external concern surfaced through the CLI).
//
// Invariant: Attempts always equals len(History).
//
// Example JSON representation:
//
//	{
//	    "id": "rem-1a2b3c4d",
//	    "status": "waiting",
//	    "context": {"commit_id": "abc123"},
//	    "attempts": 2,
//	    "history": [...],
//	    "started_at": "2026-08-28T10:00:00Z",
//	    "updated_at": "2026-08-28T10:05:00Z",
//	    "schema_version": "1.0"
//	}
type Session struct {
	// ID is the unique identifier for the session.
	// Format: rem-XXXXXXXX (8 hex characters from a UUID).
	ID string `json:"id"`

	// Status is the current state in the session lifecycle.
	// Uses constants.SessionStatus values (pending, monitoring, etc.).
	Status constants.SessionStatus `json:"status"`

	// Context identifies the run this session records.
	Context RemediationContext `json:"context"`

	// Attempts is the number of monitoring attempts completed so far.
	// Always equals len(History).
	Attempts int `json:"attempts"`

	// History is the ordered, append-only monitoring history.
	History []MonitoringResult `json:"history,omitempty"`

	// FixesApplied lists fixes applied and kept so far.
	FixesApplied []AppliedFix `json:"fixes_applied,omitempty"`

	// Transitions is the audit trail of status changes.
	Transitions []Transition `json:"transitions,omitempty"`

	// LastError is the most recent error or escalation reason, if any.
	LastError string `json:"last_error,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// UpdatedAt is when the record was last persisted.
	UpdatedAt time.Time `json:"updated_at"`

	// EndedAt is when the run reached a terminal status (nil while running).
	EndedAt *time.Time `json:"ended_at,omitempty"`

	// Duration is the total wall-clock time of the run, set once terminal.
	Duration time.Duration `json:"duration,omitempty"`

	// SchemaVersion indicates the version of the Session struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion string `json:"schema_version"`
}

// Transition records a single status change on a session.
type Transition struct {
	// FromStatus is the status before the transition.
	FromStatus constants.SessionStatus `json:"from_status"`

	// ToStatus is the status after the transition.
	ToStatus constants.SessionStatus `json:"to_status"`

	// Timestamp is when the transition occurred.
	Timestamp time.Time `json:"timestamp"`

	// Reason explains why the transition happened.
	Reason string `json:"reason,omitempty"`
}

// Terminal reports whether the session has reached a terminal status.
func (s *Session) Terminal() bool {
	switch s.Status {
	case constants.SessionStatusSucceeded,
		constants.SessionStatusFailed,
		constants.SessionStatusEscalated:
		return true
	default:
		return false
	}
}
