package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupTTL bounds how long a (url, hash) pair suppresses duplicate
// ingestion. A page revisited after the window is stored again.
const DefaultDedupTTL = 24 * time.Hour

// DedupCache tracks recently ingested (url, content-hash) pairs so the same
// capture arriving from several tabs is stored once.
type DedupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDedupCache(addr string, ttl time.Duration) (*DedupCache, error) {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &DedupCache{rdb: rdb, ttl: ttl}, nil
}

// Seen marks the pair and reports whether it was already present. SETNX
// makes mark-and-check one atomic step.
func (c *DedupCache) Seen(ctx context.Context, url, contentHash string) (bool, error) {
	key := fmt.Sprintf("webdata:seen:%x:%s", md5.Sum([]byte(url)), contentHash)
	set, err := c.rdb.SetNX(ctx, key, "1", c.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

func (c *DedupCache) Close() error {
	return c.rdb.Close()
}
