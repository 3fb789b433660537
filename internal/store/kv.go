// Package store provides key-value persistence for remedy session records.
// This package implements the storage contract consumed by the orchestrator,
// with atomic writes and file locking for data integrity.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/remedy/internal/constants"
	remerrors "github.com/mrz1836/remedy/internal/errors"
	"github.com/mrz1836/remedy/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validKeyRegex matches keys safe to use as file names.
var validKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// KV defines the key-value contract used for session persistence.
// Implementations must provide atomic per-key get/set with no
// partial writes.
type KV interface {
	// Get retrieves the value stored under key.
	// Returns ErrKeyNotFound if the key has no value.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value atomically.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys, sorted lexicographically.
	Keys(ctx context.Context) ([]string, error)
}

// FileKV implements KV using one JSON file per key on the local filesystem.
type FileKV struct {
	baseDir string // Usually ~/.remedy/sessions
}

// NewFileKV creates a FileKV rooted at baseDir. If baseDir is empty,
// the default ~/.remedy/sessions directory is used.
func NewFileKV(baseDir string) (*FileKV, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		baseDir = filepath.Join(home, constants.RemedyHome, constants.SessionsDir)
	}
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileKV{baseDir: baseDir}, nil
}

// Get retrieves the value stored under key.
func (s *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	lockFile, err := s.acquireLock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get key '%s': %w", key, err)
	}
	defer func() { _ = releaseLock(lockFile) }()

	data, err := os.ReadFile(s.valuePath(key)) //#nosec G304 -- key is validated against traversal
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get key '%s': %w", key, remerrors.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("failed to read key '%s': %w", key, err)
	}

	return data, nil
}

// Set stores value under key, replacing any previous value atomically.
func (s *FileKV) Set(ctx context.Context, key string, value []byte) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := validateKey(key); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	lockFile, err := s.acquireLock(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to set key '%s': %w", key, err)
	}
	defer func() { _ = releaseLock(lockFile) }()

	if err := atomicWrite(s.valuePath(key), value); err != nil {
		return fmt.Errorf("failed to set key '%s': %w", key, err)
	}

	return nil
}

// Delete removes the value stored under key.
func (s *FileKV) Delete(ctx context.Context, key string) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := validateKey(key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	lockFile, err := s.acquireLock(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	// Release before removal so the lock file can be removed too.
	_ = releaseLock(lockFile)

	if err := os.Remove(s.valuePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	_ = os.Remove(s.lockPath(key))

	return nil
}

// Keys returns all stored keys, sorted lexicographically.
func (s *FileKV) Keys(ctx context.Context) ([]string, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, constants.SessionFileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, constants.SessionFileExt))
	}

	sort.Strings(keys)
	return keys, nil
}

// validateKey rejects empty keys and keys that could escape the base directory.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key %w", remerrors.ErrEmptyValue)
	}
	if !validKeyRegex.MatchString(key) || strings.Contains(key, "..") {
		return fmt.Errorf("key '%s': %w", key, remerrors.ErrPathTraversal)
	}
	return nil
}

// valuePath returns the path to a key's value file.
func (s *FileKV) valuePath(key string) string {
	return filepath.Join(s.baseDir, key+constants.SessionFileExt)
}

// lockPath returns the path to a key's lock file.
func (s *FileKV) lockPath(key string) string {
	return filepath.Join(s.baseDir, key+constants.SessionFileExt+".lock")
}

// acquireLock acquires an exclusive file lock for the key.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileKV) acquireLock(ctx context.Context, key string) (*os.File, error) {
	if err := os.MkdirAll(s.baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(key), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, key is validated
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire lock with timeout
	deadline := time.Now().Add(constants.LockTimeout)
	for {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", remerrors.ErrLockTimeout)
		}

		// Wait a bit before retrying
		time.Sleep(constants.LockPollInterval)
	}
}

// releaseLock releases a file lock.
func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}

	// Release the lock
	if err := flock.Unlock(f.Fd()); err != nil {
		// Still try to close the file
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	// Write to temp file
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	// Write data
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close file before rename
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
