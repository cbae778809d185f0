// Package source turns origin-specific input (an uploaded file, a GitHub
// repository URL) into a domain.Document.
package source

import (
	"context"

	"smart-docs/internal/domain"
)

// Source produces a Document from one origin.
type Source interface {
	Origin() domain.Origin
	Load(ctx context.Context) (domain.Document, error)
}

// Fetcher retrieves the default-branch README of a repository.
type Fetcher interface {
	FetchReadme(ctx context.Context, owner, repo string) (string, error)
}
