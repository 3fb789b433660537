package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// MemoryKV implements KV with an in-process map.
// It is safe for concurrent use and intended for tests and for callers
// that do not need persistence across process restarts.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

// Get retrieves the value stored under key.
func (s *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("failed to get key '%s': %w", key, remerrors.ErrKeyNotFound)
	}

	// Copy so callers cannot mutate stored state.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = stored
	return nil
}

// Delete removes the value stored under key.
func (s *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys returns all stored keys, sorted lexicographically.
func (s *MemoryKV) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Ensure both implementations satisfy KV.
var (
	_ KV = (*FileKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
