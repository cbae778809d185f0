package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"smart-docs/internal/domain"
)

// Cache stores generated summaries and fetched READMEs.
type Cache interface {
	// GetSummary retrieves a cached summary by key
	// Returns nil if not found
	GetSummary(ctx context.Context, key string) (*domain.SummaryResult, error)

	// SetSummary stores a summary with TTL
	SetSummary(ctx context.Context, key string, result domain.SummaryResult, ttl time.Duration) error

	// GetReadme retrieves a cached README; ok is false on a miss
	GetReadme(ctx context.Context, key string) (readme string, ok bool, err error)

	// SetReadme stores a README with TTL
	SetReadme(ctx context.Context, key string, readme string, ttl time.Duration) error

	// Purge removes every cached entry and reports how many were dropped
	Purge(ctx context.Context) (int, error)

	// Close closes the cache connection
	Close() error
}

// Key hashes the given parts into a stable cache key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
