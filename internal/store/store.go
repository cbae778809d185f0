package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"smart-docs/internal/domain"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSummaryNotFound  = errors.New("summary not found")
)

// Record is one entry in the document history.
type Record struct {
	ID          uuid.UUID     `json:"id"`
	Origin      domain.Origin `json:"origin"`
	OriginLabel string        `json:"origin_label"`
	SizeBytes   int64         `json:"size_bytes"`
	LoadedAt    time.Time     `json:"loaded_at"`
	HasSummary  bool          `json:"has_summary"`
}

// Summary is a stored summary for one document.
type Summary struct {
	DocumentID uuid.UUID            `json:"document_id"`
	Result     domain.SummaryResult `json:"result"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Store persists loaded documents and their completed summaries.
type Store interface {
	// SaveDocument inserts doc; saving the same ID again is a no-op.
	SaveDocument(ctx context.Context, doc domain.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error)
	// ListDocuments returns the newest documents first. limit <= 0 means all.
	ListDocuments(ctx context.Context, limit int) ([]Record, error)
	// SaveSummary stores or replaces the summary of an existing document.
	SaveSummary(ctx context.Context, docID uuid.UUID, res domain.SummaryResult) error
	GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error)
	Close() error
}
