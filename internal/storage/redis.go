// Package storage provides a Redis backed fiber.Storage so rate limit counters
// are shared between instances.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "apex:"
	opTimeout     = 2 * time.Second
)

// Redis implements fiber.Storage on top of go-redis. Keys are namespaced by prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis parses redisURL, connects and checks connectivity with a PING.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisWithClient(client, defaultPrefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get returns nil, nil for a missing key.
func (r *Redis) Get(key string) ([]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val under key. A zero exp means no expiry.
func (r *Redis) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.client.Set(ctx, r.key(key), val, exp).Err()
}

// Delete removes key.
func (r *Redis) Delete(key string) error {
	if len(key) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}

// Reset removes every key under the prefix. Other keys in the database are left alone.
func (r *Redis) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
