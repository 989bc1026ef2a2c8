package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

const redisKeyPrefix = "idpsync:event:"

// RedisStore keeps dedup records as JSON strings whose key TTL tracks the
// record expiry, so Redis evicts them on its own.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client, now: time.Now}, nil
}

func redisKey(eventID string) string {
	return redisKeyPrefix + eventID
}

func (r *RedisStore) Get(ctx context.Context, eventID string) (*dedup.Record, error) {
	data, err := r.client.Get(ctx, redisKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var rec dedup.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", eventID, err)
	}
	return &rec, nil
}

func (r *RedisStore) Put(ctx context.Context, rec dedup.Record) error {
	ttl := rec.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, rec.EventID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(rec.EventID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, eventID string) error {
	if err := r.client.Del(ctx, redisKey(eventID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
