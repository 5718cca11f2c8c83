package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quality-service/internal/models"
)

const utilizationKeyPrefix = "quality:utilization:"

// DefaultUtilizationTTL bounds how stale a cached shelf occupancy may get.
const DefaultUtilizationTTL = 30 * time.Second

// UtilizationCache is a short-TTL Redis cache in front of the shelf
// utilization aggregate, invalidated whenever a shelf's contents change.
type UtilizationCache interface {
	// Get returns the cached utilization, or nil on a miss.
	Get(ctx context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error)
	Set(ctx context.Context, shelfID uuid.UUID, util *models.ShelfUtilization) error
	Invalidate(ctx context.Context, shelfIDs ...uuid.UUID) error
}

type utilizationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUtilizationCache creates a Redis-backed utilization cache
func NewUtilizationCache(client *redis.Client, ttl time.Duration) UtilizationCache {
	if ttl <= 0 {
		ttl = DefaultUtilizationTTL
	}
	return &utilizationCache{client: client, ttl: ttl}
}

func (c *utilizationCache) Get(ctx context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error) {
	payload, err := c.client.Get(ctx, utilizationKeyPrefix+shelfID.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var util models.ShelfUtilization
	if err := json.Unmarshal(payload, &util); err != nil {
		return nil, err
	}
	return &util, nil
}

func (c *utilizationCache) Set(ctx context.Context, shelfID uuid.UUID, util *models.ShelfUtilization) error {
	payload, err := json.Marshal(util)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, utilizationKeyPrefix+shelfID.String(), payload, c.ttl).Err()
}

func (c *utilizationCache) Invalidate(ctx context.Context, shelfIDs ...uuid.UUID) error {
	if len(shelfIDs) == 0 {
		return nil
	}
	keys := make([]string, len(shelfIDs))
	for i, id := range shelfIDs {
		keys[i] = utilizationKeyPrefix + id.String()
	}
	return c.client.Del(ctx, keys...).Err()
}
