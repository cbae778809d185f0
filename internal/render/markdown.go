// Package render turns a document and its summary into markdown, and
// markdown into themed terminal output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"smart-docs/internal/domain"
)

var gradeLabel = map[domain.Grade]string{
	domain.GradeGood: "🟢 good",
	domain.GradeFair: "🟡 fair",
	domain.GradePoor: "🔴 poor",
}

// Markdown renders a summary, with a source line when doc is non-nil.
func Markdown(doc *domain.Document, res domain.SummaryResult) string {
	var b strings.Builder

	b.WriteString("# AI Analysis Summary\n\n")
	if doc != nil {
		fmt.Fprintf(&b, "_Source: %s (%s, %d bytes)_\n\n", doc.OriginLabel, doc.Origin, doc.SizeBytes)
	}
	b.WriteString(res.Summary)
	b.WriteString("\n\n")

	if len(res.KeyPoints) > 0 {
		b.WriteString("## Key Points\n\n")
		for i, p := range res.KeyPoints {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}
	writeList(&b, "Technical Highlights", res.TechnicalHighlights)

	if len(res.QualityScores) > 0 {
		b.WriteString("## Quality Assessment\n\n")
		b.WriteString("| Dimension | Score | Grade | Notes |\n|---|---|---|---|\n")
		dims := make([]string, 0, len(res.QualityScores))
		for d := range res.QualityScores {
			dims = append(dims, d)
		}
		sort.Strings(dims)
		for _, d := range dims {
			q := res.QualityScores[d]
			fmt.Fprintf(&b, "| %s | %d%% | %s | %s |\n", d, q.Score, gradeLabel[domain.GradeFor(q.Score)], escapeCell(q.Description))
		}
		b.WriteString("\n")
	}

	if len(res.StructureNotes.Strengths) > 0 || len(res.StructureNotes.Improvements) > 0 {
		b.WriteString("## Project Structure\n\n")
		writeList(&b, "### Strengths", res.StructureNotes.Strengths)
		writeList(&b, "### Improvements", res.StructureNotes.Improvements)
	}
	writeList(&b, "Recommendations", res.Recommendations)

	m := res.Metrics
	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Lines of code | %d |\n", m.LinesOfCode)
	fmt.Fprintf(&b, "| Components | %d |\n", m.Components)
	fmt.Fprintf(&b, "| Pages | %d |\n", m.Pages)
	fmt.Fprintf(&b, "| Utilities | %d |\n", m.Utilities)
	fmt.Fprintf(&b, "| Test coverage | %d%% |\n", m.TestCoveragePercent)
	if m.BundleSize != "" {
		fmt.Fprintf(&b, "| Bundle size | %s |\n", m.BundleSize)
	}
	return b.String()
}

// writeList writes a bulleted section; title without a leading # becomes
// a level two heading.
func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	if !strings.HasPrefix(title, "#") {
		title = "## " + title
	}
	b.WriteString(title + "\n\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
