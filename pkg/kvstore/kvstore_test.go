package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"farmtoclick/pkg/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, s kvstore.Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "auth_token")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "auth_token", "abc"))
	require.NoError(t, s.Set(ctx, "auth_user", `{"id":"1"}`))

	v, err := s.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	// Overwrite
	require.NoError(t, s.Set(ctx, "auth_token", "def"))
	v, err = s.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Delete(ctx, "auth_token", "auth_user", "never_set"))
	_, err = s.Get(ctx, "auth_token")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	_, err = s.Get(ctx, "auth_user")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	assert.NoError(t, s.Delete(ctx))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, kvstore.NewMemory())
}

func TestMemory_ZeroValue(t *testing.T) {
	exerciseStore(t, &kvstore.Memory{})
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "auth_token", "persisted"))
	require.NoError(t, s.Close())

	reopened, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := kvstore.NewRedis(client, "farm:")
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "auth_token", "x"))
	assert.True(t, mr.Exists("farm:auth_token"))
	require.NoError(t, s.Close())
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := kvstore.DialRedis(context.Background(), "redis://"+mr.Addr(), "p:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)

	_, err = kvstore.DialRedis(context.Background(), "not a url", "")
	assert.Error(t, err)
}
