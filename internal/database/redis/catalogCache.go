package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/go-redis/redis/v8"
)

const versionKey = "catalog:version"

// CatalogCache keeps search pages under keys that embed a catalog version.
// Bumping the version makes every older page unreachable; the TTL removes them.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// GetPage looks filter up under the current catalog version and returns that
// version so the caller can store a freshly read page under it. version is -1
// when Redis is unreachable.
func (c *CatalogCache) GetPage(ctx context.Context, filter *entity.TicketFilter) (*entity.TicketPage, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, -1, false
	}

	key, err := pageKey(version, filter)
	if err != nil {
		return nil, version, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, version, false
	}

	var page entity.TicketPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, version, false
	}
	return &page, version, true
}

// SetPage stores page under the version observed before it was read from the
// store. A page read across an invalidation lands under the old version and is
// never served.
func (c *CatalogCache) SetPage(ctx context.Context, version int64, filter *entity.TicketFilter, page *entity.TicketPage) error {
	if version < 0 {
		return nil
	}

	key, err := pageKey(version, filter)
	if err != nil {
		return err
	}

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

func (c *CatalogCache) version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

func pageKey(version int64, filter *entity.TicketFilter) (string, error) {
	raw, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	return fmt.Sprintf("catalog:v%d:%s", version, hex.EncodeToString(sum[:])), nil
}
