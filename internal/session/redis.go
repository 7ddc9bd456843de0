package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	idempotencyKeyPrefix = "idem:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// Redis keeps each session in a hash, refreshing its TTL on every write.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Session(id string) Session {
	return &redisSession{r: r, id: id}
}

type redisSession struct {
	r  *Redis
	id string
}

func (s *redisSession) ID() string { return s.id }

func (s *redisSession) key() string { return sessionKeyPrefix + s.id }

func (s *redisSession) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.r.client.HGet(ctx, s.key(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *redisSession) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe := s.r.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, raw)
	if s.r.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisSession) Delete(ctx context.Context, key string) error {
	return s.r.client.HDel(ctx, s.key(), key).Err()
}

// RedisGuard claims idempotency keys with SETNX.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
