// Package remediation drives the bounded remediation loop for a failing
// commit: monitor, analyze, fix, validate, redeploy, escalate.
package remediation

import (
	"context"

	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// ValidTransitions defines the allowed session status transitions.
// Any transition not listed here is rejected with ErrInvalidTransition.
//
//nolint:gochecknoglobals // Read-only state machine definition
var ValidTransitions = map[constants.SessionStatus][]constants.SessionStatus{
	constants.SessionStatusPending: {
		constants.SessionStatusMonitoring,
		constants.SessionStatusFailed,
	},
	constants.SessionStatusMonitoring: {
		constants.SessionStatusFixing,
		constants.SessionStatusWaiting,
		constants.SessionStatusSucceeded,
		constants.SessionStatusFailed,
		constants.SessionStatusEscalated,
	},
	constants.SessionStatusFixing: {
		constants.SessionStatusRedeploying,
		constants.SessionStatusWaiting,
		constants.SessionStatusFailed,
		constants.SessionStatusEscalated,
	},
	constants.SessionStatusRedeploying: {
		constants.SessionStatusMonitoring,
		constants.SessionStatusFailed,
	},
	constants.SessionStatusWaiting: {
		constants.SessionStatusMonitoring,
		constants.SessionStatusFailed,
		constants.SessionStatusEscalated,
	},
	// Terminal statuses have no outgoing transitions.
	constants.SessionStatusSucceeded: {},
	constants.SessionStatusFailed:    {},
	constants.SessionStatusEscalated: {},
}

// IsValidTransition reports whether moving from one status to another
// is allowed by the state machine.
func IsValidTransition(from, to constants.SessionStatus) bool {
	for _, allowed := range ValidTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transition moves the session to a new status, recording the change in
// the session's audit trail. The caller persists the session afterwards.
func transition(ctx context.Context, clk clock.Clock, session *domain.Session, to constants.SessionStatus, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidTransition(session.Status, to) {
		return remerrors.Wrapf(remerrors.ErrInvalidTransition, "%s -> %s", session.Status, to)
	}

	session.Transitions = append(session.Transitions, domain.Transition{
		FromStatus: session.Status,
		ToStatus:   to,
		Timestamp:  clk.Now().UTC(),
		Reason:     reason,
	})
	session.Status = to

	return nil
}
