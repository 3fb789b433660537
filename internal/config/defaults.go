package config

import (
	"time"

	"github.com/mrz1836/remedy/internal/constants"
)

// DefaultCleanupMaxAge is how long terminal sessions are kept by default.
const DefaultCleanupMaxAge = 7 * 24 * time.Hour

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Remediation: RemediationConfig{
			// MaxAttempts: 3 bounds the loop so a broken pipeline never
			// keeps the process busy indefinitely.
			MaxAttempts: constants.DefaultMaxAttempts,

			// BaseDelay: 30s; with exponential doubling the waits run
			// 30s, 60s, 120s across the default budget.
			BaseDelay: constants.DefaultBaseDelay,

			// ConfidenceThreshold: 0.8 keeps auto-application to
			// high-confidence, low-risk fixes.
			ConfidenceThreshold: constants.DefaultConfidenceThreshold,

			// RulesFile: empty means the built-in catalog.
			RulesFile: "",
		},
		Escalation: EscalationConfig{
			// WarnAttempts: 0 means derive max_attempts - 1 at wiring time.
			WarnAttempts: 0,

			// MaxElapsed: 30 minutes before an emergency is raised.
			MaxElapsed: constants.DefaultMaxElapsed,
		},
		Checks: ChecksConfig{
			// WorkDir: commands run in the current directory unless a
			// repository path is configured.
			WorkDir: ".",

			// Timeout: 2 minutes bounds a single status query.
			Timeout: constants.DefaultCheckTimeout,

			// DeployTimeout: 10 minutes; redeploys take far longer than
			// status queries.
			DeployTimeout: constants.DefaultDeployTimeout,
		},
		Store: StoreConfig{
			// Dir: empty means ~/.remedy/sessions.
			Dir: "",

			// CleanupMaxAge: terminal sessions kept a week for audit.
			CleanupMaxAge: DefaultCleanupMaxAge,
		},
		Notifications: NotificationsConfig{
			// Bell: on by default; --quiet suppresses it.
			Bell: true,

			// Levels: only loop-terminating escalations ring the bell.
			Levels: []string{"emergency", "rollback"},
		},
	}
}
