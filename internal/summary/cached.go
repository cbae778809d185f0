package summary

import (
	"context"
	"log/slog"
	"time"

	"smart-docs/internal/cache"
	"smart-docs/internal/domain"
)

type cachedClient struct {
	next  Client
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// WithCache serves repeated requests for identical text from c. Cache
// failures are logged and never fail the request.
func WithCache(next Client, c cache.Cache, ttl time.Duration, log *slog.Logger) Client {
	return &cachedClient{next: next, cache: c, ttl: ttl, log: log}
}

func (c *cachedClient) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	key := cache.Key(text)
	if cached, err := c.cache.GetSummary(ctx, key); err != nil {
		c.log.Warn("summary cache read failed", "err", err)
	} else if cached != nil {
		c.log.Debug("summary cache hit", "key", key[:12])
		return *cached, nil
	}

	res, err := c.next.Summarize(ctx, text)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	if err := c.cache.SetSummary(ctx, key, res, c.ttl); err != nil {
		c.log.Warn("failed to cache summary", "err", err)
	}
	return res, nil
}
