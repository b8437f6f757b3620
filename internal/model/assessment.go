package model

// Answer is one questionnaire response as submitted by a client
type Answer struct {
	QID    int    `json:"qid" bson:"qid"`       // references catalog question id, may be unknown
	Option string `json:"option" bson:"option"` // option key, e.g. "A"; unknown keys score 0
}

// ChildInfo identifies the assessed child and the contact for the report
type ChildInfo struct {
	ChildName     string `json:"child_name" bson:"child_name"`
	ChildAge      int    `json:"child_age" bson:"child_age"`
	ParentContact string `json:"parent_contact" bson:"parent_contact"`
}

// AssessmentRequest is the request body for POST /assess
type AssessmentRequest struct {
	ChildInfo `bson:",inline"`
	Answers   []Answer `json:"answers" bson:"answers"`
}

// AssessmentResponse is returned to the client after a successful assessment.
// Score and category always come from the scoring engine; the narrative
// fields come from the synthesized report.
type AssessmentResponse struct {
	ID                     int64              `json:"id"`
	Score                  float64            `json:"score"`
	Category               Category           `json:"category"`
	HeaderSummary          any                `json:"header_summary"`
	ProfessionalParagraph  any                `json:"professional_paragraph"`
	Observations           any                `json:"observations"`
	WhyThisMatters         any                `json:"why_this_matters"`
	ImprovementPlan        any                `json:"improvement_plan"`
	RecommendedFamilyRules any                `json:"recommended_family_rules"`
	FollowUp               any                `json:"follow_up"`
	MonitorConfidence      any                `json:"monitor_confidence"`
	CounselorNotes         any                `json:"counselor_notes"`
	SuggestedResources     any                `json:"suggested_resources"`
	RawAI                  *GeneratorOutput   `json:"raw_ai"`
	Pillars                map[string]float64 `json:"pillars"`
	Risks                  RiskIndices        `json:"risks"`
	RedFlags               []string           `json:"red_flags"`
}

// NewAssessmentResponse picks the client-facing fields out of a stored record
func NewAssessmentResponse(rec *ReportRecord) *AssessmentResponse {
	r := rec.AIStructured
	return &AssessmentResponse{
		ID:                     rec.ID,
		Score:                  rec.Scores.OverallScore,
		Category:               rec.Scores.Category,
		HeaderSummary:          r[FieldHeaderSummary],
		ProfessionalParagraph:  r[FieldProfessionalParagraph],
		Observations:           r[FieldObservations],
		WhyThisMatters:         r[FieldWhyThisMatters],
		ImprovementPlan:        r[FieldImprovementPlan],
		RecommendedFamilyRules: r[FieldRecommendedFamilyRules],
		FollowUp:               r[FieldFollowUp],
		MonitorConfidence:      r[FieldMonitorConfidence],
		CounselorNotes:         r[FieldCounselorNotes],
		SuggestedResources:     r[FieldSuggestedResources],
		RawAI:                  rec.AIRaw,
		Pillars:                rec.Scores.PillarPercentages,
		Risks:                  rec.Scores.Risks,
		RedFlags:               rec.Scores.RedFlags,
	}
}
