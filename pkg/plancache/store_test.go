package plancache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.PlanCacheConfig{
		DatabaseType: "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "plancache.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{1, 2, 3, 4}, "SELECT * FROM foo"))

	e, hit, err := s.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte{1, 2, 3, 4}, e.XASLID)
	require.Equal(t, "SELECT * FROM foo", e.PlanText)
	require.Equal(t, int64(1), e.HitCount)
}

func TestGet_MissReturnsFalseNoError(t *testing.T) {
	s := newTestStore(t)
	e, hit, err := s.Get(context.Background(), "unknown", "0|0|1")
	require.NoError(t, err)
	require.False(t, hit)
	require.Nil(t, e)
}

func TestGet_BumpsHitCountOnEachLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{1}, ""))

	_, _, err := s.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	e, hit, err := s.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, int64(2), e.HitCount)
}

func TestPut_OverwritesExistingEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{1}, "old plan"))
	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{2}, "new plan"))

	e, hit, err := s.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte{2}, e.XASLID)
	require.Equal(t, "new plan", e.PlanText)
}

func TestDrop_RemovesSingleEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{1}, ""))
	require.NoError(t, s.Put(ctx, "hash-2", "0|0|1234", []byte{2}, ""))

	require.NoError(t, s.Drop(ctx, "hash-1", "0|0|1234"))

	_, hit, err := s.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	require.False(t, hit)

	_, hit, err = s.Get(ctx, "hash-2", "0|0|1234")
	require.NoError(t, err)
	require.True(t, hit)
}

func TestDropAll_ClearsEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "hash-1", "0|0|1234", []byte{1}, ""))
	require.NoError(t, s.Put(ctx, "hash-2", "0|0|1234", []byte{2}, ""))

	require.NoError(t, s.DropAll(ctx))

	_, hit1, _ := s.Get(ctx, "hash-1", "0|0|1234")
	_, hit2, _ := s.Get(ctx, "hash-2", "0|0|1234")
	require.False(t, hit1)
	require.False(t, hit2)
}

func TestOpen_UnsupportedDatabaseType(t *testing.T) {
	_, err := Open(context.Background(), config.PlanCacheConfig{DatabaseType: "mysql"})
	require.Error(t, err)
}
