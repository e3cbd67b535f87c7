package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// MarkerStore remembers which devices already spent their anonymous generation.
// Key format: anon:used:<device_id>. Keys never expire.
type MarkerStore struct {
	client *redis.Client
}

// NewMarkerStore creates a MarkerStore wrapping the given Redis client.
func NewMarkerStore(client *redis.Client) *MarkerStore {
	return &MarkerStore{client: client}
}

// IsSet reports whether the device already used its free generation.
func (m *MarkerStore) IsSet(ctx context.Context, deviceID string) (bool, error) {
	n, err := m.client.Exists(ctx, m.key(deviceID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: marker check: %w", domain.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// Set records the free generation as used. Setting it twice is harmless.
func (m *MarkerStore) Set(ctx context.Context, deviceID string) error {
	if err := m.client.Set(ctx, m.key(deviceID), "1", 0).Err(); err != nil {
		return fmt.Errorf("%w: marker set: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (m *MarkerStore) key(deviceID string) string {
	return "anon:used:" + deviceID
}
