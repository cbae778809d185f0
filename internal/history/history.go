// Package history records loaded documents and completed summaries, either
// straight into a store or through the queue for the archiver.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-docs/internal/domain"
	"smart-docs/internal/ingest"
	"smart-docs/internal/queue"
	"smart-docs/internal/store"
)

type DocumentLoadedPayload struct {
	Document domain.Document `json:"document"`
}

// SummaryCompletedPayload carries the document as well so the archiver can
// store it even if the matching document.loaded task has not arrived yet.
type SummaryCompletedPayload struct {
	Document domain.Document      `json:"document"`
	Result   domain.SummaryResult `json:"result"`
}

// StoreRecorder writes events directly to a store.
type StoreRecorder struct {
	Store store.Store
}

var _ ingest.Recorder = StoreRecorder{}

func (r StoreRecorder) DocumentLoaded(ctx context.Context, doc domain.Document) error {
	return r.Store.SaveDocument(ctx, doc)
}

func (r StoreRecorder) SummaryCompleted(ctx context.Context, doc domain.Document, res domain.SummaryResult) error {
	if err := r.Store.SaveDocument(ctx, doc); err != nil {
		return err
	}
	return r.Store.SaveSummary(ctx, doc.ID, res)
}

// QueueRecorder publishes events as queue tasks.
type QueueRecorder struct {
	Queue    queue.Queue
	Attempts int
	Backoff  time.Duration
}

var _ ingest.Recorder = QueueRecorder{}

func NewQueueRecorder(q queue.Queue) QueueRecorder {
	return QueueRecorder{Queue: q, Attempts: 3, Backoff: 200 * time.Millisecond}
}

func (r QueueRecorder) DocumentLoaded(ctx context.Context, doc domain.Document) error {
	return r.publish(ctx, queue.TaskTypeDocumentLoaded, DocumentLoadedPayload{Document: doc})
}

func (r QueueRecorder) SummaryCompleted(ctx context.Context, doc domain.Document, res domain.SummaryResult) error {
	return r.publish(ctx, queue.TaskTypeSummaryCompleted, SummaryCompletedPayload{Document: doc, Result: res})
}

func (r QueueRecorder) publish(ctx context.Context, taskType queue.TaskType, payload any) error {
	task, err := queue.NewTask(taskType, payload)
	if err != nil {
		return err
	}
	if err := queue.EnqueueWithRetry(ctx, r.Queue, task, r.Attempts, r.Backoff); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

// Archive applies one queued event to the store.
func Archive(ctx context.Context, st store.Store, task queue.Task) error {
	rec := StoreRecorder{Store: st}
	switch task.Type {
	case queue.TaskTypeDocumentLoaded:
		var p DocumentLoadedPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", task.Type, err)
		}
		return rec.DocumentLoaded(ctx, p.Document)
	case queue.TaskTypeSummaryCompleted:
		var p SummaryCompletedPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", task.Type, err)
		}
		return rec.SummaryCompleted(ctx, p.Document, p.Result)
	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}
