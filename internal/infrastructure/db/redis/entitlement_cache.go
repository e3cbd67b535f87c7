package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

const defaultCacheTTL = 5 * time.Minute

// EntitlementCache keeps resolved entitlement records for a short time.
// Key format: entitlement:<user_id>
type EntitlementCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEntitlementCache returns a cache whose entries expire after ttl.
func NewEntitlementCache(client *redis.Client, ttl time.Duration) *EntitlementCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &EntitlementCache{client: client, ttl: ttl}
}

func (c *EntitlementCache) Get(ctx context.Context, id string) (*domain.EntitlementRecord, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("entitlement cache get: %w", err)
	}

	var rec domain.EntitlementRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("entitlement cache decode: %w", err)
	}
	return &rec, true, nil
}

func (c *EntitlementCache) Put(ctx context.Context, rec *domain.EntitlementRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("entitlement cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(rec.ID), raw, c.ttl).Err()
}

func (c *EntitlementCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *EntitlementCache) key(id string) string {
	return "entitlement:" + id
}
