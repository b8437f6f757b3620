package model

import (
	"fmt"
	"reflect"
	"strings"
)

// Report field names. These are part of the external contract.
const (
	FieldScore                  = "score"
	FieldCategory               = "category"
	FieldHeaderSummary          = "header_summary"
	FieldProfessionalParagraph  = "professional_paragraph"
	FieldObservations           = "observations"
	FieldWhyThisMatters         = "why_this_matters"
	FieldImprovementPlan        = "improvement_plan"
	FieldRecommendedFamilyRules = "recommended_family_rules"
	FieldFollowUp               = "follow_up"
	FieldMonitorConfidence      = "monitor_confidence"
	FieldCounselorNotes         = "counselor_notes"
	FieldSuggestedResources     = "suggested_resources"
	FieldNarrative              = "narrative"
)

// StructuredReport is the externally visible report body.
//
// It starts as whatever the generator returned and is completed by the
// synthesizer, so a value may be a typed Go value (synthesized) or decoded
// JSON of any shape (passed through from the generator).
type StructuredReport map[string]any

// ImprovementPlan holds the 30/60/90-day bullets
type ImprovementPlan struct {
	Days30 []string `json:"30_days" bson:"30_days"`
	Days60 []string `json:"60_days" bson:"60_days"`
	Days90 []string `json:"90_days" bson:"90_days"`
}

// FollowUp schedules the next assessment
type FollowUp struct {
	NextAssessmentDate    string `json:"next_assessment_date" bson:"next_assessment_date"` // YYYY-MM-DD
	ConsultantRecommended string `json:"consultant_recommended" bson:"consultant_recommended"`
}

// Resource is a suggested reading link
type Resource struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
}

// String renders a field as text. Non-string values are formatted with fmt.
func (r StructuredReport) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Strings renders a list field as text lines. A scalar becomes a single line.
func (r StructuredReport) Strings(key string) []string {
	return ToStrings(r[key])
}

// ToStrings flattens any slice (typed, []any or driver-specific array types)
// into strings.
func ToStrings(v any) []string {
	if v == nil {
		return nil
	}
	if ss, ok := v.([]string); ok {
		return ss
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return nil
		}
		return []string{s}
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}
