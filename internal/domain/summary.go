package domain

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SummaryResult is the structured analysis of one document.
type SummaryResult struct {
	Summary             string                  `json:"summary" yaml:"summary" validate:"required"`
	KeyPoints           []string                `json:"key_points" yaml:"key_points" validate:"required,min=1,dive,required"`
	TechnicalHighlights []string                `json:"technical_highlights" yaml:"technical_highlights" validate:"dive,required"`
	Recommendations     []string                `json:"recommendations" yaml:"recommendations" validate:"dive,required"`
	QualityScores       map[string]QualityScore `json:"quality_scores" yaml:"quality_scores" validate:"required,min=1,dive,keys,required,endkeys,required"`
	StructureNotes      StructureNotes          `json:"structure_notes" yaml:"structure_notes"`
	Metrics             Metrics                 `json:"metrics" yaml:"metrics"`
}

// QualityScore rates one dimension (readability, security, ...).
type QualityScore struct {
	Score       int    `json:"score" yaml:"score" validate:"min=0,max=100"`
	Description string `json:"description" yaml:"description" validate:"required"`
}

type StructureNotes struct {
	Strengths    []string `json:"strengths" yaml:"strengths" validate:"dive,required"`
	Improvements []string `json:"improvements" yaml:"improvements" validate:"dive,required"`
}

type Metrics struct {
	LinesOfCode         int    `json:"lines_of_code" yaml:"lines_of_code" validate:"min=0"`
	Components          int    `json:"components" yaml:"components" validate:"min=0"`
	Pages               int    `json:"pages" yaml:"pages" validate:"min=0"`
	Utilities           int    `json:"utilities" yaml:"utilities" validate:"min=0"`
	TestCoveragePercent int    `json:"test_coverage_percent" yaml:"test_coverage_percent" validate:"min=0,max=100"`
	BundleSize          string `json:"bundle_size" yaml:"bundle_size"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func summaryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks a result against the SummaryResult schema.
func (s SummaryResult) Validate() error {
	return summaryValidator().Struct(s)
}

// DecodeSummary parses and schema-checks a provider response. Any failure is
// reported as ErrMalformedResponse.
func DecodeSummary(raw []byte) (SummaryResult, error) {
	var res SummaryResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return SummaryResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := res.Validate(); err != nil {
		return SummaryResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return res, nil
}

// Grade buckets a quality score the way the summary panel colours it.
type Grade string

const (
	GradeGood Grade = "good"
	GradeFair Grade = "fair"
	GradePoor Grade = "poor"
)

func GradeFor(score int) Grade {
	switch {
	case score >= 85:
		return GradeGood
	case score >= 70:
		return GradeFair
	default:
		return GradePoor
	}
}
