// Package config provides configuration management for remedy with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (REMEDY_* prefix)
//  3. Project config (.remedy/config.yaml)
//  4. Global config (~/.remedy/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for remedy.
// It contains all configuration sections for the application.
type Config struct {
	// Remediation contains settings for the remediation loop itself.
	Remediation RemediationConfig `yaml:"remediation" mapstructure:"remediation"`

	// Escalation contains settings for the escalation policy.
	Escalation EscalationConfig `yaml:"escalation" mapstructure:"escalation"`

	// Checks contains the collaborator commands queried each attempt.
	Checks ChecksConfig `yaml:"checks" mapstructure:"checks"`

	// Store contains settings for session record persistence.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Notifications contains settings for operator notifications.
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

// RemediationConfig bounds the remediation loop.
type RemediationConfig struct {
	// MaxAttempts is the monitoring attempt budget for one run.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the backoff before the second attempt. The delay
	// before attempt n+1 is BaseDelay * 2^(n-1).
	// Default: 30s
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay"`

	// ConfidenceThreshold is the minimum score a candidate fix must
	// reach to be auto-applied. Range 0..1.
	// Default: 0.8
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`

	// RulesFile is an optional path to a fix rule catalog that replaces
	// the built-in rules.
	// Default: "" (built-in catalog)
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// EscalationConfig tunes the escalation policy.
type EscalationConfig struct {
	// WarnAttempts is the attempt count at which a warning is raised.
	// Default: max_attempts - 1
	WarnAttempts int `yaml:"warn_attempts" mapstructure:"warn_attempts"`

	// MaxElapsed is the wall-clock ceiling for a run before an
	// emergency is raised.
	// Default: 30m
	MaxElapsed time.Duration `yaml:"max_elapsed" mapstructure:"max_elapsed"`
}

// ChecksConfig names the commands behind the collaborator interfaces.
// Empty commands disable the corresponding check (it reports passed)
// except deploy, which is required for the fix path.
type ChecksConfig struct {
	// WorkDir is the directory commands run in.
	// Default: "." (current directory)
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`

	// Performance is the argv of the performance gate command.
	Performance []string `yaml:"performance" mapstructure:"performance"`

	// Security is the argv of the security audit command.
	Security []string `yaml:"security" mapstructure:"security"`

	// Deploy is the argv of the redeploy command. The commit id is
	// appended as the final argument.
	Deploy []string `yaml:"deploy" mapstructure:"deploy"`

	// Timeout bounds a single collaborator command.
	// Default: 2m
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// DeployTimeout bounds a single redeploy trigger, which typically
	// takes much longer than a status query.
	// Default: 10m
	DeployTimeout time.Duration `yaml:"deploy_timeout" mapstructure:"deploy_timeout"`
}

// StoreConfig controls session record persistence.
type StoreConfig struct {
	// Dir is the directory session records are stored in.
	// Default: "" (uses ~/.remedy/sessions)
	Dir string `yaml:"dir" mapstructure:"dir"`

	// CleanupMaxAge is how long terminal sessions are kept before the
	// cleanup command removes them.
	// Default: 168h (7 days)
	CleanupMaxAge time.Duration `yaml:"cleanup_max_age" mapstructure:"cleanup_max_age"`
}

// NotificationsConfig controls operator notifications.
type NotificationsConfig struct {
	// Bell enables terminal bell notifications.
	// Default: true
	Bell bool `yaml:"bell" mapstructure:"bell"`

	// Levels lists the escalation levels that trigger a bell.
	// Default: ["emergency", "rollback"]
	Levels []string `yaml:"levels" mapstructure:"levels"`
}
