package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()

	id := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, sessionKeyPrefix+id) })

	s := NewRedis(client, time.Minute).Session(id)
	want := map[string]line{"3": {Quantity: 1, Price: "99"}}
	require.NoError(t, s.Set(ctx, "cart", want))

	var got map[string]line
	found, err := s.Get(ctx, "cart", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, sessionKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, "cart"))
	found, err = s.Get(ctx, "cart", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisGuard(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	g := NewRedisGuard(client)

	key := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, idempotencyKeyPrefix+key) })

	ok, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, key))
	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}
