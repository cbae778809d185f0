package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"smart-docs/internal/domain"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSummary(ctx context.Context, key string) (*domain.SummaryResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SummaryResult), args.Error(1)
}

func (m *MockCache) SetSummary(ctx context.Context, key string, result domain.SummaryResult, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockCache) GetReadme(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetReadme(ctx context.Context, key string, readme string, ttl time.Duration) error {
	args := m.Called(ctx, key, readme, ttl)
	return args.Error(0)
}

func (m *MockCache) Purge(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
