package ingest

import (
	"context"

	"smart-docs/internal/domain"
)

// Future is the pending outcome of one summary request.
type Future struct {
	done chan struct{}
	res  domain.SummaryResult
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed once the request has been committed or discarded.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the request resolves or ctx ends. A result that arrived
// after its document was replaced resolves with domain.ErrStaleResult.
func (f *Future) Wait(ctx context.Context) (domain.SummaryResult, error) {
	select {
	case <-ctx.Done():
		return domain.SummaryResult{}, ctx.Err()
	case <-f.done:
		return f.res, f.err
	}
}

func (f *Future) resolve(res domain.SummaryResult, err error) {
	f.res, f.err = res, err
	close(f.done)
}
