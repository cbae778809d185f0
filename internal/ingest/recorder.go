package ingest

import (
	"context"

	"smart-docs/internal/domain"
)

// Recorder is notified of coordinator events, typically to persist history.
type Recorder interface {
	DocumentLoaded(ctx context.Context, doc domain.Document) error
	SummaryCompleted(ctx context.Context, doc domain.Document, res domain.SummaryResult) error
}

type noopRecorder struct{}

func (noopRecorder) DocumentLoaded(context.Context, domain.Document) error { return nil }

func (noopRecorder) SummaryCompleted(context.Context, domain.Document, domain.SummaryResult) error {
	return nil
}
