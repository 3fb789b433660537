package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// kvUnderTest builds each KV implementation against a fresh backing store.
func kvUnderTest(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	return map[string]KV{
		"FileKV":   fileKV,
		"MemoryKV": NewMemoryKV(),
	}
}

func TestKV_SetGetRoundtrip(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, "rem-1a2b3c4d", []byte(`{"id":"rem-1a2b3c4d"}`)))

			value, err := kv.Get(ctx, "rem-1a2b3c4d")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"id":"rem-1a2b3c4d"}`), value)
		})
	}
}

func TestKV_SetOverwrites(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, "key1", []byte("first")))
			require.NoError(t, kv.Set(ctx, "key1", []byte("second")))

			value, err := kv.Get(ctx, "key1")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), value)
		})
	}
}

func TestKV_GetMissingKey(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := kv.Get(context.Background(), "missing")

			require.Error(t, err)
			require.ErrorIs(t, err, remerrors.ErrKeyNotFound)
		})
	}
}

func TestKV_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, "key1", []byte("value")))
			require.NoError(t, kv.Delete(ctx, "key1"))

			_, err := kv.Get(ctx, "key1")
			require.ErrorIs(t, err, remerrors.ErrKeyNotFound)

			// Deleting a missing key is not an error.
			require.NoError(t, kv.Delete(ctx, "key1"))
		})
	}
}

func TestKV_KeysSorted(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			for _, key := range []string{"rem-charlie", "rem-alpha", "rem-bravo"} {
				require.NoError(t, kv.Set(ctx, key, []byte("value")))
			}

			keys, err := kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"rem-alpha", "rem-bravo", "rem-charlie"}, keys)
		})
	}
}

func TestKV_KeyValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "empty key", key: "", wantErr: remerrors.ErrEmptyValue},
		{name: "parent traversal", key: "../evil", wantErr: remerrors.ErrPathTraversal},
		{name: "path separator", key: "a/b", wantErr: remerrors.ErrPathTraversal},
		{name: "embedded dotdot", key: "a..b", wantErr: remerrors.ErrPathTraversal},
		{name: "whitespace", key: "a b", wantErr: remerrors.ErrPathTraversal},
	}

	for name, kv := range kvUnderTest(t) {
		for _, tt := range tests {
			t.Run(name+" "+tt.name, func(t *testing.T) {
				t.Parallel()

				err := kv.Set(context.Background(), tt.key, []byte("value"))
				require.ErrorIs(t, err, tt.wantErr)

				_, err = kv.Get(context.Background(), tt.key)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}
	}
}

func TestKV_CanceledContext(t *testing.T) {
	t.Parallel()

	for name, kv := range kvUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			assert.ErrorIs(t, kv.Set(ctx, "key1", []byte("value")), context.Canceled)
			_, err := kv.Get(ctx, "key1")
			assert.ErrorIs(t, err, context.Canceled)
			_, err = kv.Keys(ctx)
			assert.ErrorIs(t, err, context.Canceled)
			assert.ErrorIs(t, kv.Delete(ctx, "key1"), context.Canceled)
		})
	}
}

func TestFileKV_KeysEmptyDirectory(t *testing.T) {
	t.Parallel()

	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	keys, err := kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileKV_KeysIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "rem-1a2b3c4d", []byte("value")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a session"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0o750))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rem-1a2b3c4d"}, keys)
}

func TestFileKV_ValueFilePermissions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "rem-1a2b3c4d", []byte("value")))

	info, err := os.Stat(filepath.Join(dir, "rem-1a2b3c4d.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMemoryKV_ReturnsCopies(t *testing.T) {
	t.Parallel()

	kv := NewMemoryKV()
	ctx := context.Background()

	original := []byte("value")
	require.NoError(t, kv.Set(ctx, "key1", original))

	// Mutating the input after Set must not affect stored state.
	original[0] = 'X'
	stored, err := kv.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), stored)

	// Mutating the output must not affect stored state either.
	stored[0] = 'Y'
	again, err := kv.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}
