// Package tag holds classification results.
package tag

import "github.com/recitevault/recitevault/internal/domain/taxonomy"

// Signals records the evidence a classification was built from, for audit.
type Signals struct {
	HitKeywords    []string `json:"hit_keywords"`
	RawNumberForms []string `json:"raw_number_forms"`
	RawTitleForms  []string `json:"raw_title_forms"`
	ManualOverride bool     `json:"manual_override,omitempty"`
}

// Result is a best-guess taxonomy assignment for a piece of text.
// Confidence is a rule-assigned tier, not a learned probability.
type Result struct {
	Category   taxonomy.Category `json:"type"`
	Index      int               `json:"index"`
	TitleZH    string            `json:"title_zh"`
	TitleEN    string            `json:"title_en"`
	Confidence float64           `json:"confidence"`
	Signals    Signals           `json:"signals"`
}

// Manual builds a full-confidence result for a human relabel.
func Manual(c taxonomy.Category, index int, titleZH, titleEN string) Result {
	return Result{
		Category:   c,
		Index:      index,
		TitleZH:    titleZH,
		TitleEN:    titleEN,
		Confidence: 1.0,
		Signals:    Signals{ManualOverride: true},
	}
}
