package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"smart-docs/internal/domain"
)

const invalidRepoMessage = "Please enter a valid GitHub repository URL"

// GitHub account and repository name character sets.
var (
	ownerPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
	repoPattern  = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
)

// ValidRepoName reports whether owner and repo are plausible GitHub names.
func ValidRepoName(owner, repo string) bool {
	return ownerPattern.MatchString(owner) && repoPattern.MatchString(repo) && repo != "." && repo != ".."
}

// Repository is a GitHub repository URL whose README becomes the document.
type Repository struct {
	URL     string
	Fetcher Fetcher
}

var _ Source = Repository{}

func (r Repository) Origin() domain.Origin { return domain.OriginRepository }

func (r Repository) Load(ctx context.Context) (domain.Document, error) {
	owner, repo, err := ParseRepoURL(r.URL)
	if err != nil {
		return domain.Document{}, err
	}
	if r.Fetcher == nil {
		return domain.Document{}, domain.Wrap(domain.ErrNetwork, "Failed to fetch repository. Please try again.", fmt.Errorf("no fetcher configured"))
	}
	readme, err := r.Fetcher.FetchReadme(ctx, owner, repo)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.NewDocument(domain.OriginRepository, strings.TrimSpace(r.URL), readme), nil
}

// ValidRepoURL is the cheap pre-check applied before any parsing.
func ValidRepoURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed != "" && strings.Contains(trimmed, "github.com")
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// The scheme is optional; a ".git" suffix and deeper paths are ignored.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	if !ValidRepoURL(raw) {
		return "", "", domain.Invalid(invalidRepoMessage)
	}
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", domain.Wrap(domain.ErrValidation, invalidRepoMessage, err)
	}
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return "", "", domain.Invalid(invalidRepoMessage)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", domain.Invalid(invalidRepoMessage)
	}
	owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	if !ValidRepoName(owner, repo) {
		return "", "", domain.Invalid(invalidRepoMessage)
	}
	return owner, repo, nil
}
