package summary

const systemPrompt = `You review technical documentation and project READMEs.
Respond with a single JSON object and nothing else, using exactly these keys:
{
  "summary": string, one paragraph,
  "key_points": [string, at least one],
  "technical_highlights": [string],
  "recommendations": [string],
  "quality_scores": {"readability"|"maintainability"|"performance"|"security": {"score": integer 0-100, "description": string}},
  "structure_notes": {"strengths": [string], "improvements": [string]},
  "metrics": {"lines_of_code": integer, "components": integer, "pages": integer, "utilities": integer, "test_coverage_percent": integer 0-100, "bundle_size": string}
}
Use 0 for metrics the document does not mention.`

func userPrompt(text string) string {
	return "Document:\n\n" + text
}
