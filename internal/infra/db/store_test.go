package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, Migrate(conn, SQLite))
	return NewStore(conn, SQLite)
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "users", `[]`))
	require.NoError(t, s.Set(ctx, "users", `[{"id":1}]`))

	v, ok, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, v)

	require.NoError(t, s.Remove(ctx, "users"))
	_, ok, err = s.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_KeysAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "currentUser", "a"))
	_, ok, err := s.Get(ctx, "currentuser")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrate_Idempotent(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, SQLite))
	require.NoError(t, Migrate(conn, SQLite))
}
