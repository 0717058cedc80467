package paramcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeSource) FetchForceServerParametersRaw(ctx context.Context) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

type forcedParams struct {
	MaxClients string `mapstructure:"max_clients"`
}

func TestFetchForced_MissFetchesAndPopulatesCache(t *testing.T) {
	c := newTestCache(t)
	src := &fakeSource{values: map[string]string{"max_clients": "64"}}

	var dst forcedParams
	require.NoError(t, c.FetchForced(context.Background(), src, "db1:1523", time.Hour, &dst))
	require.Equal(t, "64", dst.MaxClients)
	require.Equal(t, 1, src.calls)

	_, hit, err := c.Get("db1:1523")
	require.NoError(t, err)
	require.True(t, hit)
}

func TestFetchForced_HitSkipsSource(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("db1:1523", map[string]string{"max_clients": "32"}, time.Hour))

	src := &fakeSource{values: map[string]string{"max_clients": "99"}}
	var dst forcedParams
	require.NoError(t, c.FetchForced(context.Background(), src, "db1:1523", time.Hour, &dst))

	require.Equal(t, "32", dst.MaxClients)
	require.Equal(t, 0, src.calls)
}

func TestFetchForced_PropagatesSourceError(t *testing.T) {
	c := newTestCache(t)
	src := &fakeSource{err: errors.New("dial failed")}

	var dst forcedParams
	err := c.FetchForced(context.Background(), src, "db1:1523", time.Hour, &dst)
	require.Error(t, err)
}
