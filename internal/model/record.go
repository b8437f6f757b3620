package model

// GeneratorOutput is what the external text generator returned
type GeneratorOutput struct {
	Provider string         `json:"provider" bson:"provider"`
	Model    string         `json:"model" bson:"model"`
	Text     string         `json:"text" bson:"text"` // may be empty
	Raw      map[string]any `json:"raw" bson:"raw"`   // decoded upstream response body
}

// ReportRecord is the immutable record persisted once per submission.
// A record written after a generator failure carries only scores.
type ReportRecord struct {
	ID              int64            `json:"id" bson:"_id"`
	Timestamp       float64          `json:"timestamp" bson:"timestamp"` // unix seconds
	Child           ChildInfo        `json:"child" bson:"child"`
	Answers         []Answer         `json:"answers,omitempty" bson:"answers,omitempty"`
	Scores          Scores           `json:"scores" bson:"scores"`
	AIRaw           *GeneratorOutput `json:"ai_raw" bson:"ai_raw"`
	AIParsed        map[string]any   `json:"ai_parsed" bson:"ai_parsed"`
	AIStructured    StructuredReport `json:"ai_structured" bson:"ai_structured"`
	ExtractStrategy string           `json:"extract_strategy,omitempty" bson:"extract_strategy,omitempty"`
}

// HasNarrative reports whether the generator step completed for this record
func (r *ReportRecord) HasNarrative() bool {
	return r.AIStructured != nil
}

// ReportSummary is the listing view of a record
type ReportSummary struct {
	ID        int64   `json:"id" bson:"_id"`
	Timestamp float64 `json:"timestamp" bson:"timestamp"`
	Child     string  `json:"child" bson:"child"`
	Scores    Scores  `json:"scores" bson:"scores"`
}

// Summary builds the listing view
func (r *ReportRecord) Summary() ReportSummary {
	return ReportSummary{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Child:     r.Child.ChildName,
		Scores:    r.Scores,
	}
}
