package summary

import (
	"context"
	"errors"
	"fmt"

	"smart-docs/internal/domain"
)

// Client produces a structured summary for a document's text. Failures wrap
// domain.ErrSummaryGeneration through one of its sub-kinds.
type Client interface {
	Summarize(ctx context.Context, text string) (domain.SummaryResult, error)
}

// upstreamFailure classifies a provider error as a timeout or a generic
// upstream failure. Cancellation is not a timeout.
func upstreamFailure(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamTimeout, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamError, provider, err)
}
