package paramcache

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"
)

// forceParamSource is the subset of *dbclient.Connection this package
// depends on, kept narrow to avoid an import cycle between pkg/dbclient
// (which already imports pkg/paramcache's sibling, pkg/config) and this
// package.
type forceParamSource interface {
	FetchForceServerParametersRaw(ctx context.Context) (map[string]string, error)
}

// FetchForced returns serverID's forced parameters, decoded into dst,
// served from cache when present and refetched from conn otherwise. A
// successful refetch repopulates the cache with ttl.
func (c *Cache) FetchForced(ctx context.Context, conn forceParamSource, serverID string, ttl time.Duration, dst any) error {
	if values, hit, err := c.Get(serverID); err == nil && hit {
		return mapstructure.Decode(values, dst)
	}

	values, err := conn.FetchForceServerParametersRaw(ctx)
	if err != nil {
		return err
	}
	if err := c.Put(serverID, values, ttl); err != nil {
		return err
	}
	return mapstructure.Decode(values, dst)
}
