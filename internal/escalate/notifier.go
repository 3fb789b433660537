package escalate

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
)

// Notifier delivers escalation decisions to operators.
// Decisions flow through explicit calls rather than broadcast events so
// causality stays visible in the call chain.
type Notifier interface {
	Notify(ctx context.Context, rctx domain.RemediationContext, decision domain.EscalationDecision)
}

// NotificationConfig holds configuration for operator notifications.
type NotificationConfig struct {
	// BellEnabled controls whether terminal bell notifications are enabled.
	BellEnabled bool

	// Quiet suppresses all notifications.
	Quiet bool

	// Levels is the list of escalation levels that trigger a bell.
	// Supported: "warning", "emergency", "rollback".
	Levels []string
}

// DefaultNotificationConfig returns sensible defaults.
func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		BellEnabled: true,
		Quiet:       false,
		Levels:      []string{"emergency", "rollback"},
	}
}

// BellNotifier emits a terminal bell for configured escalation levels
// and records every decision in the structured log.
type BellNotifier struct {
	config NotificationConfig
	writer io.Writer
	logger zerolog.Logger
}

// NewBellNotifier creates a notifier writing to stdout.
func NewBellNotifier(cfg NotificationConfig, logger zerolog.Logger) *BellNotifier {
	return &BellNotifier{config: cfg, writer: os.Stdout, logger: logger}
}

// NewBellNotifierWithWriter creates a notifier with a custom writer.
// This is useful for testing.
func NewBellNotifierWithWriter(cfg NotificationConfig, w io.Writer, logger zerolog.Logger) *BellNotifier {
	return &BellNotifier{config: cfg, writer: w, logger: logger}
}

// Notify logs the decision and emits a bell when the level is configured
// for audible notification. Level none is logged at debug only.
func (n *BellNotifier) Notify(_ context.Context, rctx domain.RemediationContext, decision domain.EscalationDecision) {
	if n == nil {
		return
	}

	if decision.Level == constants.EscalationNone {
		return
	}

	n.logger.Warn().
		Str("commit_id", rctx.CommitID).
		Int("attempt", decision.Attempt).
		Str("level", decision.Level.String()).
		Str("reason", decision.Reason).
		Msg("escalation raised")

	if !n.config.BellEnabled || n.config.Quiet {
		return
	}
	if !n.shouldBell(decision.Level) {
		return
	}

	_, _ = n.writer.Write([]byte("\a"))
}

// shouldBell checks if the level matches a configured bell level.
func (n *BellNotifier) shouldBell(level constants.EscalationLevel) bool {
	for _, l := range n.config.Levels {
		if l == level.String() {
			return true
		}
	}
	return false
}

// LogNotifier records decisions in the structured log only.
// It is the default when no bell notifier is wired.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify records the decision; level none is ignored.
func (n *LogNotifier) Notify(_ context.Context, rctx domain.RemediationContext, decision domain.EscalationDecision) {
	if decision.Level == constants.EscalationNone {
		return
	}
	n.logger.Warn().
		Str("commit_id", rctx.CommitID).
		Int("attempt", decision.Attempt).
		Str("level", decision.Level.String()).
		Str("reason", decision.Reason).
		Msg("escalation raised")
}

// Ensure implementations satisfy Notifier.
var (
	_ Notifier = (*BellNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
