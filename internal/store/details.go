package store

import (
	"encoding/json"
	"fmt"

	"smart-docs/internal/domain"
)

// details holds the nested parts of a summary that are stored as one JSON
// column.
type details struct {
	QualityScores  map[string]domain.QualityScore `json:"quality_scores"`
	StructureNotes domain.StructureNotes          `json:"structure_notes"`
	Metrics        domain.Metrics                 `json:"metrics"`
}

func encodeDetails(res domain.SummaryResult) ([]byte, error) {
	return json.Marshal(details{
		QualityScores:  res.QualityScores,
		StructureNotes: res.StructureNotes,
		Metrics:        res.Metrics,
	})
}

func decodeDetails(raw []byte, res *domain.SummaryResult) error {
	var d details
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode summary details: %w", err)
	}
	res.QualityScores = d.QualityScores
	res.StructureNotes = d.StructureNotes
	res.Metrics = d.Metrics
	return nil
}
