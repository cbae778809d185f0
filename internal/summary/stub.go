package summary

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"smart-docs/internal/domain"
)

// Stub returns a static payload after a fixed delay.
type Stub struct {
	Latency time.Duration
	Payload domain.SummaryResult
}

var _ Client = (*Stub)(nil)

// NewStub builds a stub serving DefaultPayload.
func NewStub(latency time.Duration) *Stub {
	return &Stub{Latency: latency, Payload: DefaultPayload()}
}

func (s *Stub) Summarize(ctx context.Context, _ string) (domain.SummaryResult, error) {
	timer := time.NewTimer(s.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.SummaryResult{}, upstreamFailure("stub", ctx.Err())
	case <-timer.C:
	}
	return clone(s.Payload), nil
}

// LoadFixture reads a YAML summary fixture and checks it against the schema.
func LoadFixture(path string) (domain.SummaryResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("read fixture: %w", err)
	}
	var res domain.SummaryResult
	if err := yaml.Unmarshal(raw, &res); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := res.Validate(); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return res, nil
}

// clone copies the slices and map so callers cannot mutate the stub's payload.
func clone(r domain.SummaryResult) domain.SummaryResult {
	out := r
	out.KeyPoints = append([]string(nil), r.KeyPoints...)
	out.TechnicalHighlights = append([]string(nil), r.TechnicalHighlights...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	out.StructureNotes.Strengths = append([]string(nil), r.StructureNotes.Strengths...)
	out.StructureNotes.Improvements = append([]string(nil), r.StructureNotes.Improvements...)
	if r.QualityScores != nil {
		out.QualityScores = make(map[string]domain.QualityScore, len(r.QualityScores))
		for k, v := range r.QualityScores {
			out.QualityScores[k] = v
		}
	}
	return out
}

// DefaultPayload is the canned analysis served by the stub provider.
func DefaultPayload() domain.SummaryResult {
	return domain.SummaryResult{
		Summary: "A modern web application with a clear component structure and a documented " +
			"setup process. The codebase follows current conventions and keeps configuration small.",
		KeyPoints: []string{
			"Component-based architecture with reusable UI building blocks",
			"TypeScript is used throughout for type safety",
			"Routing is handled client-side with a small set of pages",
			"Styling relies on a utility-first CSS framework",
		},
		TechnicalHighlights: []string{
			"Fast development builds with hot module replacement",
			"Strict compiler settings catch errors early",
			"Lint rules enforce a consistent code style",
		},
		Recommendations: []string{
			"Add unit tests for the core components",
			"Document the environment variables required for deployment",
			"Introduce error boundaries around asynchronous views",
		},
		QualityScores: map[string]domain.QualityScore{
			"readability":     {Score: 88, Description: "Clear naming and consistent formatting"},
			"maintainability": {Score: 82, Description: "Well-separated modules with few cross dependencies"},
			"performance":     {Score: 76, Description: "Reasonable bundle size; some large assets could be lazy loaded"},
			"security":        {Score: 68, Description: "No input sanitisation around rendered HTML"},
		},
		StructureNotes: domain.StructureNotes{
			Strengths: []string{
				"Logical folder layout separating pages, components and utilities",
				"Shared types live next to the code that uses them",
			},
			Improvements: []string{
				"Duplicate page definitions could be collapsed",
				"Mock data should move behind an API boundary",
			},
		},
		Metrics: domain.Metrics{
			LinesOfCode:         1554,
			Components:          12,
			Pages:               4,
			Utilities:           3,
			TestCoveragePercent: 0,
			BundleSize:          "245 KB",
		},
	}
}
