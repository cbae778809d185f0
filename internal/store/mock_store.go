package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"smart-docs/internal/domain"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveDocument(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockStore) ListDocuments(ctx context.Context, limit int) ([]Record, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockStore) SaveSummary(ctx context.Context, docID uuid.UUID, res domain.SummaryResult) error {
	args := m.Called(ctx, docID, res)
	return args.Error(0)
}

func (m *MockStore) GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(Summary), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
