package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-docs/internal/domain"
)

const (
	// Key prefix for cached summaries
	summaryKeyPrefix = "smartdocs:summary:"

	// Key prefix for cached READMEs
	readmeKeyPrefix = "smartdocs:readme:"
)

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetSummary(ctx context.Context, key string) (*domain.SummaryResult, error) {
	data, err := c.client.Get(ctx, summaryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var result domain.SummaryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetSummary(ctx context.Context, key string, result domain.SummaryResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKeyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) GetReadme(ctx context.Context, key string) (string, bool, error) {
	readme, err := c.client.Get(ctx, readmeKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return readme, true, nil
}

func (c *RedisCache) SetReadme(ctx context.Context, key string, readme string, ttl time.Duration) error {
	return c.client.Set(ctx, readmeKeyPrefix+key, readme, ttl).Err()
}

// Purge deletes every summary and README key.
func (c *RedisCache) Purge(ctx context.Context) (int, error) {
	pipe := c.client.Pipeline()
	count := 0

	for _, prefix := range []string{summaryKeyPrefix, readmeKeyPrefix} {
		iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			pipe.Del(ctx, iter.Val())
			count++
		}
		if err := iter.Err(); err != nil {
			return 0, err
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
