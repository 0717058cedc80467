package paramcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "params"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGet_RoundTrips(t *testing.T) {
	c := newTestCache(t)
	values := map[string]string{"max_clients": "100", "auto_restart": "yes"}

	require.NoError(t, c.Put("db1:1523", values, time.Hour))

	got, hit, err := c.Get("db1:1523")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, values, got)
}

func TestGet_MissReturnsFalseNoError(t *testing.T) {
	c := newTestCache(t)
	got, hit, err := c.Get("unknown-server")
	require.NoError(t, err)
	require.False(t, hit)
	require.Nil(t, got)
}

func TestInvalidate_RemovesEntry(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("db1:1523", map[string]string{"k": "v"}, time.Hour))

	require.NoError(t, c.Invalidate("db1:1523"))

	_, hit, err := c.Get("db1:1523")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestInvalidate_MissingKeyIsNotAnError(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Invalidate("never-existed"))
}

func TestPut_ZeroTTLNeverExpiresWithinTest(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("db1:1523", map[string]string{"k": "v"}, 0))

	_, hit, err := c.Get("db1:1523")
	require.NoError(t, err)
	require.True(t, hit)
}
