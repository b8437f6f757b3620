package model

// Category is the three-way readiness classification
type Category string

const (
	CategoryNotReady   Category = "NOT READY"
	CategoryTransition Category = "TRANSITION"
	CategoryAIReady    Category = "AI-READY"
)

// RiskIndices are derived 0-100 composites, higher means greater concern
type RiskIndices struct {
	CheatingRisk             int `json:"cheating_risk" bson:"cheating_risk"`
	PrivacyRisk              int `json:"privacy_risk" bson:"privacy_risk"`
	ImpulseHallucinationRisk int `json:"impulse_hallucination_risk" bson:"impulse_hallucination_risk"`
	SupervisionGap           int `json:"supervision_gap" bson:"supervision_gap"`
}

// RiskIndex is a single named risk value
type RiskIndex struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Ordered returns the indices in their fixed declaration order
func (r RiskIndices) Ordered() []RiskIndex {
	return []RiskIndex{
		{Name: "cheating_risk", Value: r.CheatingRisk},
		{Name: "privacy_risk", Value: r.PrivacyRisk},
		{Name: "impulse_hallucination_risk", Value: r.ImpulseHallucinationRisk},
		{Name: "supervision_gap", Value: r.SupervisionGap},
	}
}

// Scores is the scoring engine output. Computed once per submission and
// never mutated afterwards.
type Scores struct {
	PillarPercentages map[string]float64 `json:"pillar_percentages" bson:"pillar_percentages"` // pillar code -> 0-100, one decimal
	OverallScore      float64            `json:"overall_score" bson:"overall_score"`           // 0-100, one decimal
	Category          Category           `json:"category" bson:"category"`
	RedFlags          []string           `json:"red_flags" bson:"red_flags"` // detection order
	Risks             RiskIndices        `json:"risks" bson:"risks"`
}

// PillarScore pairs a pillar code with its percentage
type PillarScore struct {
	Pillar  string  `json:"pillar"`
	Percent float64 `json:"percent"`
}
