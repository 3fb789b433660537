// Package constants provides centralized constant values used throughout remedy.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File and directory names used by remedy for state persistence.
const (
	// RemedyHome is the hidden directory name where remedy stores all its data.
	// This directory is created in the user's home directory.
	RemedyHome = ".remedy"

	// SessionsDir is the directory name where session records are stored.
	SessionsDir = "sessions"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// SessionFileExt is the file extension for persisted session records.
	SessionFileExt = ".json"

	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.remedy/logs/remedy.log
	CLILogFileName = "remedy.log"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file in days.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Remediation loop defaults.
const (
	// DefaultMaxAttempts is the default number of monitoring attempts
	// before a run is abandoned.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the backoff delay before the second attempt.
	// The delay before attempt n+1 is DefaultBaseDelay * 2^(n-1).
	DefaultBaseDelay = 30 * time.Second

	// DefaultConfidenceThreshold is the minimum confidence score a
	// candidate fix must reach before it is auto-applied.
	DefaultConfidenceThreshold = 0.8

	// DefaultMaxElapsed is the wall-clock ceiling for a run before the
	// escalation policy raises an emergency.
	DefaultMaxElapsed = 30 * time.Minute
)

// Collaborator timeouts.
const (
	// DefaultCheckTimeout bounds a single CI, performance, or security
	// status query.
	DefaultCheckTimeout = 2 * time.Minute

	// DefaultDeployTimeout bounds a single redeploy trigger.
	DefaultDeployTimeout = 10 * time.Minute
)

// Store configuration.
const (
	// LockTimeout is the maximum duration to wait for a file lock
	// before giving up.
	LockTimeout = 5 * time.Second

	// LockPollInterval is how often to retry acquiring a file lock.
	LockPollInterval = 50 * time.Millisecond
)

// Schema version constants for data migration support.
const (
	// SessionSchemaVersion is the current version of the session JSON schema.
	SessionSchemaVersion = "1.0"
)
