package config

import (
	"github.com/mrz1836/remedy/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - remediation.max_attempts must be between 1 and 100
//   - remediation.base_delay must be positive
//   - remediation.confidence_threshold must be in [0, 1]
//   - escalation.warn_attempts must not exceed max_attempts
//   - escalation.max_elapsed must be positive
//   - store.cleanup_max_age must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateRemediationConfig(&cfg.Remediation); err != nil {
		return err
	}

	if err := validateEscalationConfig(&cfg.Escalation, cfg.Remediation.MaxAttempts); err != nil {
		return err
	}

	if cfg.Store.CleanupMaxAge <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidStore,
			"store.cleanup_max_age must be positive, got %s", cfg.Store.CleanupMaxAge)
	}

	return nil
}

// validateRemediationConfig checks loop-specific configuration values.
func validateRemediationConfig(cfg *RemediationConfig) error {
	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 100 {
		return errors.Wrapf(errors.ErrConfigInvalidRemediation,
			"remediation.max_attempts must be between 1 and 100, got %d", cfg.MaxAttempts)
	}

	if cfg.BaseDelay <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRemediation,
			"remediation.base_delay must be positive, got %s", cfg.BaseDelay)
	}

	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidRemediation,
			"remediation.confidence_threshold must be between 0 and 1, got %g", cfg.ConfidenceThreshold)
	}

	return nil
}

// validateEscalationConfig checks escalation policy values.
func validateEscalationConfig(cfg *EscalationConfig, maxAttempts int) error {
	if cfg.WarnAttempts < 0 || cfg.WarnAttempts > maxAttempts {
		return errors.Wrapf(errors.ErrConfigInvalidEscalation,
			"escalation.warn_attempts must be between 0 and %d, got %d", maxAttempts, cfg.WarnAttempts)
	}

	if cfg.MaxElapsed <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidEscalation,
			"escalation.max_elapsed must be positive, got %s", cfg.MaxElapsed)
	}

	return nil
}
