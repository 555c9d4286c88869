package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisResultCache(client, 10*time.Minute), mr
}

func TestRedisResultCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	a := &domain.Analysis{
		ID:        uuid.New(),
		Bucket:    "images",
		Key:       "uploads/x_cat.jpg",
		Labels:    domain.Labels{{Name: "Cat", Confidence: 99.1}},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	miss, err := c.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.Set(ctx, a))
	assert.Equal(t, 10*time.Minute, mr.TTL(keyPrefix+a.ID.String()))

	hit, err := c.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, hit)

	mr.FastForward(11 * time.Minute)
	expired, err := c.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestRedisResultCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	id := uuid.New()
	require.NoError(t, mr.Set(keyPrefix+id.String(), "{not json"))

	_, err := c.Get(context.Background(), id)
	assert.Error(t, err)
	assert.False(t, mr.Exists(keyPrefix+id.String()))
}

func TestRedisResultCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), &domain.Analysis{ID: uuid.New()}))
}
