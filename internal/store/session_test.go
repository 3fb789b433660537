package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

func newTestSession(id string, startedAt time.Time) *domain.Session {
	return &domain.Session{
		ID:        id,
		Status:    constants.SessionStatusPending,
		Context:   domain.RemediationContext{CommitID: "abc123"},
		StartedAt: startedAt,
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()

	session := newTestSession("rem-1a2b3c4d", time.Now().UTC())
	require.NoError(t, store.Create(ctx, session))

	// Create stamps the schema version.
	assert.Equal(t, constants.SessionSchemaVersion, session.SchemaVersion)
	assert.False(t, session.UpdatedAt.IsZero())

	loaded, err := store.Get(ctx, "rem-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Status, loaded.Status)
	assert.Equal(t, "abc123", loaded.Context.CommitID)
	assert.Equal(t, constants.SessionSchemaVersion, loaded.SchemaVersion)
}

func TestSessionStore_CreateDuplicate(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestSession("rem-1a2b3c4d", time.Now().UTC())))

	err := store.Create(ctx, newTestSession("rem-1a2b3c4d", time.Now().UTC()))
	require.Error(t, err)
	require.ErrorIs(t, err, remerrors.ErrSessionExists)
}

func TestSessionStore_CreateInvalidInput(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()

	require.ErrorIs(t, store.Create(ctx, nil), remerrors.ErrEmptyValue)
	require.ErrorIs(t, store.Create(ctx, &domain.Session{}), remerrors.ErrEmptyValue)
}

func TestSessionStore_GetNotFound(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())

	_, err := store.Get(context.Background(), "rem-missing1")

	require.Error(t, err)
	require.ErrorIs(t, err, remerrors.ErrSessionNotFound)
}

func TestSessionStore_Update(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()

	session := newTestSession("rem-1a2b3c4d", time.Now().UTC())
	require.NoError(t, store.Create(ctx, session))

	session.Status = constants.SessionStatusMonitoring
	session.Attempts = 1
	session.History = []domain.MonitoringResult{{
		CommitID: "abc123",
		Overall:  constants.VerdictFailure,
	}}
	require.NoError(t, store.Update(ctx, session))

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.SessionStatusMonitoring, loaded.Status)
	assert.Equal(t, 1, loaded.Attempts)
	assert.Len(t, loaded.History, loaded.Attempts)
}

func TestSessionStore_UpdateNotFound(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())

	err := store.Update(context.Background(), newTestSession("rem-missing1", time.Now().UTC()))

	require.Error(t, err)
	require.ErrorIs(t, err, remerrors.ErrSessionNotFound)
}

func TestSessionStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, newTestSession("rem-oldest00", base)))
	require.NoError(t, store.Create(ctx, newTestSession("rem-newest00", base.Add(2*time.Hour))))
	require.NoError(t, store.Create(ctx, newTestSession("rem-middle00", base.Add(time.Hour))))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "rem-newest00", sessions[0].ID)
	assert.Equal(t, "rem-middle00", sessions[1].ID)
	assert.Equal(t, "rem-oldest00", sessions[2].ID)
}

func TestSessionStore_ListSkipsCorruptRecords(t *testing.T) {
	t.Parallel()

	kv := NewMemoryKV()
	store := NewSessionStore(kv)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestSession("rem-good0000", time.Now().UTC())))
	require.NoError(t, kv.Set(ctx, "rem-corrupt0", []byte("not json")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "rem-good0000", sessions[0].ID)
}

func TestSessionStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestSession("rem-1a2b3c4d", time.Now().UTC())))
	require.NoError(t, store.Delete(ctx, "rem-1a2b3c4d"))

	_, err := store.Get(ctx, "rem-1a2b3c4d")
	require.ErrorIs(t, err, remerrors.ErrSessionNotFound)

	require.ErrorIs(t, store.Delete(ctx, ""), remerrors.ErrEmptyValue)
}

func TestSessionStore_Cleanup(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(NewMemoryKV())
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	maxAge := 7 * 24 * time.Hour

	oldEnd := now.Add(-8 * 24 * time.Hour)
	recentEnd := now.Add(-time.Hour)

	// Terminal and older than the retention window: removed.
	expired := newTestSession("rem-expired0", oldEnd.Add(-time.Minute))
	expired.Status = constants.SessionStatusFailed
	expired.EndedAt = &oldEnd
	require.NoError(t, store.Create(ctx, expired))

	// Terminal but recent: kept.
	recent := newTestSession("rem-recent00", recentEnd.Add(-time.Minute))
	recent.Status = constants.SessionStatusSucceeded
	recent.EndedAt = &recentEnd
	require.NoError(t, store.Create(ctx, recent))

	// Still running, regardless of age: never touched.
	running := newTestSession("rem-running0", oldEnd.Add(-time.Minute))
	running.Status = constants.SessionStatusMonitoring
	require.NoError(t, store.Create(ctx, running))

	// Terminal old session with no recorded end time: kept.
	noEnd := newTestSession("rem-noend000", oldEnd.Add(-time.Minute))
	noEnd.Status = constants.SessionStatusEscalated
	require.NoError(t, store.Create(ctx, noEnd))

	removed, err := store.Cleanup(ctx, maxAge, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"rem-recent00", "rem-running0", "rem-noend000"}, ids)
}

func TestGenerateSessionID(t *testing.T) {
	t.Parallel()

	format := regexp.MustCompile(`^rem-[0-9a-f]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateSessionID()
		assert.Regexp(t, format, id)
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}
