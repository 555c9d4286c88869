package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

const keyPrefix = "snaplabel:analysis:"

// RedisResultCache stores analyses as JSON under snaplabel:analysis:<id>.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Get returns (nil, nil) on a miss.
func (c *RedisResultCache) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a domain.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		// Drop corrupt entries so the next lookup refills them.
		c.client.Del(ctx, cacheKey(id))
		return nil, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &a, nil
}

func (c *RedisResultCache) Set(ctx context.Context, a *domain.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(a.ID), data, c.ttl).Err()
}
