package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smart-docs/internal/domain"
)

// MockRecorder is a mock implementation of Recorder using testify/mock.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) DocumentLoaded(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRecorder) SummaryCompleted(ctx context.Context, doc domain.Document, res domain.SummaryResult) error {
	args := m.Called(ctx, doc, res)
	return args.Error(0)
}
