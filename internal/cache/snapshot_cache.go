package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/owenmcgrath/todoist-projection/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keySnapshot = "projection:snapshot"

// SnapshotCache keeps the last good snapshot in Redis so a restarted process
// can serve it before its first refresh completes.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache returns a new SnapshotCache. ttl <= 0 keeps entries forever.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl < 0 {
		ttl = 0
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot or nil if miss.
func (c *SnapshotCache) Get(ctx context.Context) (*dom.Snapshot, error) {
	b, err := c.rdb.Get(ctx, keySnapshot).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap dom.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set replaces the cached snapshot.
func (c *SnapshotCache) Set(ctx context.Context, snap dom.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keySnapshot, b, c.ttl).Err()
}

// Invalidate removes the cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keySnapshot).Err()
}
