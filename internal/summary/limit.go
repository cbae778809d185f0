package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"smart-docs/internal/domain"
)

// OversizePolicy decides what happens to text above the input limit.
type OversizePolicy string

const (
	PolicyReject   OversizePolicy = "reject"
	PolicyTruncate OversizePolicy = "truncate"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (OversizePolicy, error) {
	switch p := OversizePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReject, PolicyTruncate:
		return p, nil
	case "":
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("invalid oversize policy %q (valid options: reject, truncate)", s)
	}
}

type limitedClient struct {
	next     Client
	maxChars int
	policy   OversizePolicy
}

// WithInputLimit bounds the characters sent to next. A non-positive limit
// disables the check.
func WithInputLimit(next Client, maxChars int, policy OversizePolicy) Client {
	if maxChars <= 0 {
		return next
	}
	return &limitedClient{next: next, maxChars: maxChars, policy: policy}
}

func (c *limitedClient) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	n := utf8.RuneCountInString(text)
	if n <= c.maxChars {
		return c.next.Summarize(ctx, text)
	}
	if c.policy == PolicyTruncate {
		return c.next.Summarize(ctx, Truncate(text, c.maxChars))
	}
	return domain.SummaryResult{}, fmt.Errorf("%w: %d characters exceeds the limit of %d", domain.ErrPayloadTooLarge, n, c.maxChars)
}

// Truncate cuts text to at most maxChars runes, backing up to the last word
// boundary when the cut would split a word.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	count := 0
	for i, r := range text {
		if count == maxChars {
			cut := text[:i]
			if unicode.IsSpace(r) {
				return strings.TrimRightFunc(cut, unicode.IsSpace)
			}
			if j := strings.LastIndexFunc(cut, unicode.IsSpace); j > 0 {
				return strings.TrimRightFunc(cut[:j], unicode.IsSpace)
			}
			return cut
		}
		count++
	}
	return text
}
