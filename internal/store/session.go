package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// SessionStore persists session records on top of the KV contract.
// Keys are namespaced by session identifier so concurrent runs for
// different commits never collide.
type SessionStore struct {
	kv KV
}

// NewSessionStore creates a SessionStore backed by kv.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Create persists a new session record.
// Returns ErrSessionExists if the identifier is already in use.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return fmt.Errorf("failed to create session: session %w", remerrors.ErrEmptyValue)
	}
	if session.ID == "" {
		return fmt.Errorf("failed to create session: session ID %w", remerrors.ErrEmptyValue)
	}

	if _, err := s.kv.Get(ctx, session.ID); err == nil {
		return fmt.Errorf("failed to create session '%s': %w", session.ID, remerrors.ErrSessionExists)
	}

	session.SchemaVersion = constants.SessionSchemaVersion
	return s.write(ctx, session, "create")
}

// Get retrieves a session record by identifier.
// Returns ErrSessionNotFound if no record exists.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("failed to get session: session ID %w", remerrors.ErrEmptyValue)
	}

	data, err := s.kv.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, remerrors.ErrKeyNotFound) {
			return nil, fmt.Errorf("failed to get session '%s': %w", sessionID, remerrors.ErrSessionNotFound)
		}
		return nil, remerrors.Wrapf(err, "failed to get session '%s'", sessionID)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session '%s': corrupted record: %w", sessionID, err)
	}

	return &session, nil
}

// Update saves the current session state.
// Returns ErrSessionNotFound if the record does not exist.
func (s *SessionStore) Update(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return fmt.Errorf("failed to update session: session %w", remerrors.ErrEmptyValue)
	}
	if session.ID == "" {
		return fmt.Errorf("failed to update session: session ID %w", remerrors.ErrEmptyValue)
	}

	if _, err := s.kv.Get(ctx, session.ID); err != nil {
		if errors.Is(err, remerrors.ErrKeyNotFound) {
			return fmt.Errorf("failed to update session '%s': %w", session.ID, remerrors.ErrSessionNotFound)
		}
		return remerrors.Wrapf(err, "failed to update session '%s'", session.ID)
	}

	return s.write(ctx, session, "update")
}

// List returns all session records, sorted by start time (newest first).
// Records that fail to parse are skipped.
func (s *SessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, remerrors.Wrap(err, "failed to list sessions")
	}

	sessions := make([]*domain.Session, 0, len(keys))
	for _, key := range keys {
		// Check for cancellation during iteration
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		session, err := s.Get(ctx, key)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}

// Delete removes a session record.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("failed to delete session: session ID %w", remerrors.ErrEmptyValue)
	}
	return remerrors.Wrapf(s.kv.Delete(ctx, sessionID), "failed to delete session '%s'", sessionID)
}

// Cleanup deletes terminal sessions whose runs ended more than maxAge ago.
// It returns the number of sessions removed. Running sessions are never
// touched.
func (s *SessionStore) Cleanup(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := now.Add(-maxAge)
	for _, session := range sessions {
		if !session.Terminal() || session.EndedAt == nil {
			continue
		}
		if session.EndedAt.After(cutoff) {
			continue
		}
		if err := s.Delete(ctx, session.ID); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// write marshals and persists the session, stamping UpdatedAt.
func (s *SessionStore) write(ctx context.Context, session *domain.Session, op string) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to %s session '%s': %w", op, session.ID, err)
	}

	if err := s.kv.Set(ctx, session.ID, data); err != nil {
		return fmt.Errorf("failed to %s session '%s': %w", op, session.ID, err)
	}

	return nil
}

// GenerateSessionID generates a session ID with format rem-XXXXXXXX,
// where the suffix is the first 8 hex characters of a random UUID.
func GenerateSessionID() string {
	return "rem-" + uuid.NewString()[:8]
}
