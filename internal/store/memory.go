package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"smart-docs/internal/domain"
)

// MemoryStore keeps history in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]domain.Document
	summaries map[uuid.UUID]Summary
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{
		documents: make(map[uuid.UUID]domain.Document),
		summaries: make(map[uuid.UUID]Summary),
	}
}

func (s *MemoryStore) SaveDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		s.documents[doc.ID] = doc
	}
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.documents))
	for _, doc := range s.documents {
		_, has := s.summaries[doc.ID]
		out = append(out, recordOf(doc, has))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LoadedAt.After(out[j].LoadedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveSummary(_ context.Context, docID uuid.UUID, res domain.SummaryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return ErrDocumentNotFound
	}
	s.summaries[docID] = Summary{DocumentID: docID, Result: res, CreatedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) GetSummary(_ context.Context, docID uuid.UUID) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[docID]
	if !ok {
		return Summary{}, ErrSummaryNotFound
	}
	return sum, nil
}

func (s *MemoryStore) Close() error { return nil }

func recordOf(doc domain.Document, hasSummary bool) Record {
	return Record{
		ID:          doc.ID,
		Origin:      doc.Origin,
		OriginLabel: doc.OriginLabel,
		SizeBytes:   doc.SizeBytes,
		LoadedAt:    doc.LoadedAt,
		HasSummary:  hasSummary,
	}
}
