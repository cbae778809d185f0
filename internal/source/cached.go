package source

import (
	"context"
	"log/slog"
	"time"

	"smart-docs/internal/cache"
)

// CachedFetcher serves READMEs from a cache before asking the wrapped fetcher.
type CachedFetcher struct {
	next  Fetcher
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

var _ Fetcher = (*CachedFetcher)(nil)

func NewCachedFetcher(next Fetcher, c cache.Cache, ttl time.Duration, log *slog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c, ttl: ttl, log: log}
}

func (f *CachedFetcher) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	key := cache.Key(owner, repo)
	if readme, ok, err := f.cache.GetReadme(ctx, key); err != nil {
		f.log.Warn("readme cache read failed", "repo", owner+"/"+repo, "err", err)
	} else if ok {
		f.log.Debug("readme cache hit", "repo", owner+"/"+repo)
		return readme, nil
	}

	readme, err := f.next.FetchReadme(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	if err := f.cache.SetReadme(ctx, key, readme, f.ttl); err != nil {
		// Log cache write failure but don't fail the fetch
		f.log.Warn("failed to cache readme", "repo", owner+"/"+repo, "err", err)
	}
	return readme, nil
}
