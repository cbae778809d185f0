package summary

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smart-docs/internal/domain"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.SummaryResult), args.Error(1)
}
