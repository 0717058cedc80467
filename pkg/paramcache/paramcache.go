// Package paramcache persists forced server parameters locally, keyed by
// server identity, so a client reconnecting to a server it has already
// talked to does not re-issue get_force_server_parameters on every
// connection. Entries expire on their own via BadgerDB's native per-entry
// TTL rather than a hand-tracked expiry timestamp.
package paramcache

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const prefixForced = "forced:"

// Cache wraps one BadgerDB instance holding forced-parameter snapshots.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) the badger database at path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("paramcache: open %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores values for serverID, expiring after ttl (no expiry if ttl <= 0).
func (c *Cache) Put(serverID string, values map[string]string, ttl time.Duration) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("paramcache: encode values for %s: %w", serverID, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(keyForced(serverID), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get returns the cached forced parameters for serverID. The second return
// value is false on a cache miss (absent or expired entry).
func (c *Cache) Get(serverID string) (map[string]string, bool, error) {
	var values map[string]string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyForced(serverID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &values)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("paramcache: get %s: %w", serverID, err)
	}
	return values, true, nil
}

// Invalidate removes serverID's cached entry, used after a successful
// change_server_parameters call against that server.
func (c *Cache) Invalidate(serverID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(keyForced(serverID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func keyForced(serverID string) []byte {
	return []byte(prefixForced + serverID)
}
