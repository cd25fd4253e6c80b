package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	treeVersionKey = "reports:tree:version"
	treeKeyPrefix  = "reports:tree:v"
)

// Cache stores serialized hierarchy trees in Redis under versioned
// keys. Mutations bump the version instead of deleting, so a slow
// writer can never resurrect a stale tree under the live key.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached tree for the current version, or ok=false on
// a miss.
func (c *Cache) Get(ctx context.Context) ([]TreeNode, bool, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.rdb.Get(ctx, treeKeyPrefix+strconv.FormatInt(version, 10)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tree []TreeNode
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, false, err
	}
	return tree, true, nil
}

// Set stores the tree under the current version key.
func (c *Cache) Set(ctx context.Context, tree []TreeNode) error {
	version, err := c.version(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, treeKeyPrefix+strconv.FormatInt(version, 10), raw, c.ttl).Err()
}

// Bump invalidates every cached tree by moving to the next version.
func (c *Cache) Bump(ctx context.Context) error {
	return c.rdb.Incr(ctx, treeVersionKey).Err()
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, treeVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}
