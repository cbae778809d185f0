package source

import (
	"context"
	"time"

	"smart-docs/internal/domain"
)

// SampleReadme is served by StubFetcher for every repository.
const SampleReadme = `# Sample Project

A demonstration repository used when no GitHub access is configured.

## Features
- Upload markdown or text documents
- Fetch README files from GitHub repositories
- Generate structured summaries

## Getting Started
1. Clone the repository
2. Run ` + "`make run`" + `
3. Open http://localhost:8080
`

// StubFetcher returns SampleReadme after a fixed latency.
type StubFetcher struct {
	Latency time.Duration
	Readme  string
}

var _ Fetcher = StubFetcher{}

func (s StubFetcher) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", domain.Wrap(domain.ErrNetwork, fetchFailedMessage, ctx.Err())
		case <-t.C:
		}
	}
	if s.Readme != "" {
		return s.Readme, nil
	}
	return SampleReadme, nil
}
