package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/remedy/internal/constants"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPaths_DefaultsOnly(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromPaths(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Remediation.MaxAttempts)
	assert.Equal(t, constants.DefaultBaseDelay, cfg.Remediation.BaseDelay)
	assert.InDelta(t, constants.DefaultConfidenceThreshold, cfg.Remediation.ConfidenceThreshold, 0.0001)
	assert.Equal(t, constants.DefaultMaxElapsed, cfg.Escalation.MaxElapsed)
	assert.Equal(t, constants.DefaultCheckTimeout, cfg.Checks.Timeout)
	assert.Equal(t, constants.DefaultDeployTimeout, cfg.Checks.DeployTimeout)
	assert.Equal(t, ".", cfg.Checks.WorkDir)
	assert.Equal(t, DefaultCleanupMaxAge, cfg.Store.CleanupMaxAge)
	assert.True(t, cfg.Notifications.Bell)
	assert.Equal(t, []string{"emergency", "rollback"}, cfg.Notifications.Levels)
}

func TestLoadFromPaths_GlobalConfig(t *testing.T) {
	t.Parallel()

	globalPath := writeConfigFile(t, t.TempDir(), "config.yaml", `
remediation:
  max_attempts: 5
  base_delay: 10s
checks:
  deploy: ["scripts/deploy.sh"]
`)

	cfg, err := LoadFromPaths(context.Background(), "", globalPath)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Remediation.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Remediation.BaseDelay)
	assert.Equal(t, []string{"scripts/deploy.sh"}, cfg.Checks.Deploy)
	// Untouched keys keep their defaults.
	assert.InDelta(t, constants.DefaultConfidenceThreshold, cfg.Remediation.ConfidenceThreshold, 0.0001)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	globalPath := writeConfigFile(t, t.TempDir(), "config.yaml", `
remediation:
  max_attempts: 5
escalation:
  max_elapsed: 1h
`)
	projectPath := writeConfigFile(t, t.TempDir(), "config.yaml", `
remediation:
  max_attempts: 2
`)

	cfg, err := LoadFromPaths(context.Background(), projectPath, globalPath)

	require.NoError(t, err)
	// Project wins for the key it sets.
	assert.Equal(t, 2, cfg.Remediation.MaxAttempts)
	// Global still applies for keys the project left alone.
	assert.Equal(t, time.Hour, cfg.Escalation.MaxElapsed)
}

func TestLoadFromPaths_InvalidConfigRejected(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, t.TempDir(), "config.yaml", `
remediation:
  max_attempts: 0
`)

	_, err := LoadFromPaths(context.Background(), path, "")

	require.Error(t, err)
	require.ErrorIs(t, err, remerrors.ErrConfigInvalidRemediation)
}

func TestLoadFromPaths_MissingFilesIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "none.yaml"), filepath.Join(dir, "alsonone.yaml"))

	require.NoError(t, err)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Remediation.MaxAttempts)
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	t.Run("non-zero values override", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		applyOverrides(cfg, &Config{
			Remediation: RemediationConfig{
				MaxAttempts: 7,
				BaseDelay:   5 * time.Second,
				RulesFile:   "/etc/remedy/rules.yaml",
			},
			Checks: ChecksConfig{
				WorkDir: "/repo",
				Deploy:  []string{"scripts/deploy.sh"},
				Timeout: time.Minute,
			},
			Store: StoreConfig{Dir: "/var/lib/remedy"},
		})

		assert.Equal(t, 7, cfg.Remediation.MaxAttempts)
		assert.Equal(t, 5*time.Second, cfg.Remediation.BaseDelay)
		assert.Equal(t, "/etc/remedy/rules.yaml", cfg.Remediation.RulesFile)
		assert.Equal(t, "/repo", cfg.Checks.WorkDir)
		assert.Equal(t, []string{"scripts/deploy.sh"}, cfg.Checks.Deploy)
		assert.Equal(t, time.Minute, cfg.Checks.Timeout)
		assert.Equal(t, "/var/lib/remedy", cfg.Store.Dir)
	})

	t.Run("zero values leave config untouched", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		applyOverrides(cfg, &Config{})

		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestEffectiveWarnAttempts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		maxAttempts  int
		warnAttempts int
		want         int
	}{
		{name: "derived from max attempts", maxAttempts: 3, warnAttempts: 0, want: 2},
		{name: "explicit value wins", maxAttempts: 3, warnAttempts: 1, want: 1},
		{name: "single attempt floors at one", maxAttempts: 1, warnAttempts: 0, want: 1},
		{name: "large budget", maxAttempts: 10, warnAttempts: 0, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Remediation.MaxAttempts = tt.maxAttempts
			cfg.Escalation.WarnAttempts = tt.warnAttempts

			assert.Equal(t, tt.want, cfg.EffectiveWarnAttempts())
		})
	}
}
