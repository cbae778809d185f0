package cache

import (
	"context"
	"time"

	"smart-docs/internal/domain"
)

// NoOpCache is a cache implementation that does nothing.
// Used when no cache is configured or Redis is unavailable - all operations
// succeed but nothing is stored (always a miss).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetSummary(ctx context.Context, key string) (*domain.SummaryResult, error) {
	return nil, nil
}

func (c *NoOpCache) SetSummary(ctx context.Context, key string, result domain.SummaryResult, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) GetReadme(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) SetReadme(ctx context.Context, key string, readme string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Purge(ctx context.Context) (int, error) {
	return 0, nil
}

func (c *NoOpCache) Close() error {
	return nil
}
