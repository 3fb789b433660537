package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/errors"
)

// newViperInstance creates a new Viper instance with standard remedy configuration.
// This includes environment variable prefix (REMEDY_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("REMEDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (REMEDY_* prefix)
//  2. Project config (.remedy/config.yaml)
//  3. Global config (~/.remedy/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// The function returns an error only for actual configuration problems,
// not for missing config files (which are expected in many scenarios).
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Load project config (higher precedence, merges over global)
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Log loaded configuration for debugging
	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Int("remediation.max_attempts", cfg.Remediation.MaxAttempts).
		Dur("remediation.base_delay", cfg.Remediation.BaseDelay).
		Dur("escalation.max_elapsed", cfg.Escalation.MaxElapsed).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.remedy/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		// Global config doesn't exist or home dir unavailable, skip silently
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, constants.ConfigFileName)
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}

	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.remedy/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		// Project config doesn't exist, skip silently
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// The overrides parameter contains values from CLI flags which have the
// highest precedence in the configuration hierarchy.
//
// Only non-zero values in overrides are applied. Zero values are ignored
// to allow partial overrides.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	// Re-validate after applying overrides
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Load project config (higher precedence, merges over global)
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Remediation defaults
	v.SetDefault("remediation.max_attempts", constants.DefaultMaxAttempts)
	v.SetDefault("remediation.base_delay", "30s")
	v.SetDefault("remediation.confidence_threshold", constants.DefaultConfidenceThreshold)
	v.SetDefault("remediation.rules_file", "")

	// Escalation defaults
	v.SetDefault("escalation.warn_attempts", 0)
	v.SetDefault("escalation.max_elapsed", "30m")

	// Checks defaults
	v.SetDefault("checks.work_dir", ".")
	v.SetDefault("checks.performance", []string{})
	v.SetDefault("checks.security", []string{})
	v.SetDefault("checks.deploy", []string{})
	v.SetDefault("checks.timeout", "2m")
	v.SetDefault("checks.deploy_timeout", "10m")

	// Store defaults
	v.SetDefault("store.dir", "")
	v.SetDefault("store.cleanup_max_age", "168h")

	// Notifications defaults
	v.SetDefault("notifications.bell", true)
	v.SetDefault("notifications.levels", []string{"emergency", "rollback"})
}

// applyOverrides merges non-zero override values into the config.
// Only non-zero values are applied to allow partial overrides.
//
// IMPORTANT: Boolean fields (Notifications.Bell) cannot be overridden to
// false using this function because Go's zero value for bool is false.
// CLI implementations handle boolean flags separately via Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Remediation.MaxAttempts != 0 {
		cfg.Remediation.MaxAttempts = overrides.Remediation.MaxAttempts
	}
	if overrides.Remediation.BaseDelay != 0 {
		cfg.Remediation.BaseDelay = overrides.Remediation.BaseDelay
	}
	if overrides.Remediation.ConfidenceThreshold != 0 {
		cfg.Remediation.ConfidenceThreshold = overrides.Remediation.ConfidenceThreshold
	}
	if overrides.Remediation.RulesFile != "" {
		cfg.Remediation.RulesFile = overrides.Remediation.RulesFile
	}

	if overrides.Escalation.WarnAttempts != 0 {
		cfg.Escalation.WarnAttempts = overrides.Escalation.WarnAttempts
	}
	if overrides.Escalation.MaxElapsed != 0 {
		cfg.Escalation.MaxElapsed = overrides.Escalation.MaxElapsed
	}

	if overrides.Checks.WorkDir != "" {
		cfg.Checks.WorkDir = overrides.Checks.WorkDir
	}
	if len(overrides.Checks.Performance) > 0 {
		cfg.Checks.Performance = overrides.Checks.Performance
	}
	if len(overrides.Checks.Security) > 0 {
		cfg.Checks.Security = overrides.Checks.Security
	}
	if len(overrides.Checks.Deploy) > 0 {
		cfg.Checks.Deploy = overrides.Checks.Deploy
	}
	if overrides.Checks.Timeout != 0 {
		cfg.Checks.Timeout = overrides.Checks.Timeout
	}
	if overrides.Checks.DeployTimeout != 0 {
		cfg.Checks.DeployTimeout = overrides.Checks.DeployTimeout
	}

	if overrides.Store.Dir != "" {
		cfg.Store.Dir = overrides.Store.Dir
	}
	if overrides.Store.CleanupMaxAge != 0 {
		cfg.Store.CleanupMaxAge = overrides.Store.CleanupMaxAge
	}

	if len(overrides.Notifications.Levels) > 0 {
		cfg.Notifications.Levels = overrides.Notifications.Levels
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// EffectiveWarnAttempts resolves the warn threshold: an explicit value
// wins, otherwise it derives max_attempts - 1 (minimum 1).
func (c *Config) EffectiveWarnAttempts() int {
	if c.Escalation.WarnAttempts > 0 {
		return c.Escalation.WarnAttempts
	}
	warn := c.Remediation.MaxAttempts - 1
	if warn < 1 {
		warn = 1
	}
	return warn
}
