package synth_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"cares/internal/model"
	"cares/internal/scoring"
	"cares/internal/synth"
)

var fixedNow = time.Date(2025, 1, 15, 23, 30, 0, 0, time.UTC)

func newSynth() *synth.Synthesizer {
	return synth.NewSynthesizer(nil, func() time.Time { return fixedNow })
}

func uniform(option string) []model.Answer {
	out := make([]model.Answer, 0, 20)
	for i := 1; i <= 20; i++ {
		out = append(out, model.Answer{QID: i, Option: option})
	}
	return out
}

func cleanScores(overall float64) model.Scores {
	return model.Scores{
		PillarPercentages: map[string]float64{"E": 100, "DH": 95, "CC": 90, "TE": 90, "SG": 85},
		OverallScore:      overall,
		Category:          model.CategoryAIReady,
		RedFlags:          []string{},
		Risks:             model.RiskIndices{CheatingRisk: 10, PrivacyRisk: 20, ImpulseHallucinationRisk: 5, SupervisionGap: 39},
	}
}

func TestSynthesize_EmptyPartialFillsEverything(t *testing.T) {
	answers := uniform("B")
	scores := scoring.ComputeScores(answers)
	r := newSynth().Synthesize(map[string]any{}, scores, model.ChildInfo{ChildName: "Ada", ChildAge: 11}, answers)

	for _, f := range []string{
		model.FieldHeaderSummary, model.FieldProfessionalParagraph, model.FieldObservations,
		model.FieldWhyThisMatters, model.FieldImprovementPlan, model.FieldRecommendedFamilyRules,
		model.FieldFollowUp, model.FieldMonitorConfidence, model.FieldCounselorNotes,
		model.FieldSuggestedResources, model.FieldScore, model.FieldCategory,
	} {
		if !synth.Truthy(r[f]) && f != model.FieldMonitorConfidence {
			t.Errorf("field %s is empty: %#v", f, r[f])
		}
	}

	plan, ok := r[model.FieldImprovementPlan].(model.ImprovementPlan)
	if !ok {
		t.Fatalf("improvement_plan has type %T", r[model.FieldImprovementPlan])
	}
	for name, bullets := range map[string][]string{"30": plan.Days30, "60": plan.Days60, "90": plan.Days90} {
		if len(bullets) != 3 {
			t.Errorf("%s-day plan has %d bullets, want 3", name, len(bullets))
		}
	}
	if obs := r.Strings(model.FieldObservations); len(obs) != 3 {
		t.Errorf("observations = %d entries, want 3", len(obs))
	}
	if rules := r.Strings(model.FieldRecommendedFamilyRules); len(rules) != 5 {
		t.Errorf("family rules = %d entries, want 5", len(rules))
	}
	if r[model.FieldScore] != scores.OverallScore {
		t.Errorf("score = %v, want %v", r[model.FieldScore], scores.OverallScore)
	}
	if r[model.FieldCategory] != string(scores.Category) {
		t.Errorf("category = %v, want %v", r[model.FieldCategory], scores.Category)
	}
}

func TestSynthesize_NilPartial(t *testing.T) {
	r := newSynth().Synthesize(nil, cleanScores(95), model.ChildInfo{}, nil)
	if got := r.String(model.FieldHeaderSummary); got != "The child is assessed as AI-READY with a score of 95.0." {
		t.Errorf("header_summary = %q", got)
	}
}

func TestSynthesize_PositiveParagraph(t *testing.T) {
	r := newSynth().Synthesize(map[string]any{}, cleanScores(95), model.ChildInfo{ChildName: "Sam"}, nil)
	want := "Sam scored 95.0 (AI-READY) on the CARES assessment, demonstrating excellent digital habits across measured pillars. " +
		"No immediate safety concerns identified; continue current supervision and digital routines. " +
		"A routine 90-day check-in is suggested to ensure sustained habits."
	if got := r.String(model.FieldProfessionalParagraph); got != want {
		t.Errorf("professional_paragraph =\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesize_HighRiskBlocksPositiveParagraph(t *testing.T) {
	s := cleanScores(95)
	s.Risks.SupervisionGap = 40
	r := newSynth().Synthesize(nil, s, model.ChildInfo{ChildName: "Sam"}, nil)
	got := r.String(model.FieldProfessionalParagraph)
	if !strings.Contains(got, "The primary risk signal is supervision gap (40%)") {
		t.Errorf("paragraph does not narrate the risk: %q", got)
	}
	if strings.Contains(got, "excellent digital habits") {
		t.Errorf("paragraph used the positive variant: %q", got)
	}
}

func TestSynthesize_RiskFramedParagraph(t *testing.T) {
	scores := scoring.ComputeScores(uniform("A"))
	r := newSynth().Synthesize(nil, scores, model.ChildInfo{ChildName: "Kim"}, nil)
	want := strings.Join([]string{
		"Kim scored 0.0 (NOT READY) on the CARES assessment.",
		"Performance shows strongest area: E (0.0%) with area for improvement: SG (0.0%).",
		"The primary risk signal is cheating risk (100%), which suggests prioritized attention to behaviours that increase privacy or academic risk.",
		"Notable immediate concerns: " + strings.Join(scores.RedFlags, ", ") + ".",
		"Immediate priorities for caregivers: 1) re-affirm clear 'ask-before-share' rules; 2) remove password-sharing risks and set simple account controls; 3) run brief supervised AI-review sessions to practice source-checking and attribution.",
		"These recommendations are concise, evidence-aligned, and intended to reduce urgent risk while building skills; schedule a 90-day follow-up to review progress and adapt the plan.",
	}, " ")
	if got := r.String(model.FieldProfessionalParagraph); got != want {
		t.Errorf("professional_paragraph =\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesize_Observations(t *testing.T) {
	r := newSynth().Synthesize(nil, cleanScores(95), model.ChildInfo{}, nil)
	want := []string{
		"Strength: highest pillar E at 100.0%.",
		"Area to improve: lowest pillar SG at 85.0%.",
		"Primary concern: supervision gap (39).",
	}
	if got := r.Strings(model.FieldObservations); !reflect.DeepEqual(got, want) {
		t.Errorf("observations = %q, want %q", got, want)
	}

	flagged := cleanScores(95)
	flagged.RedFlags = []string{"Q4_shares_passwords", "soft_many_zero_answers"}
	r = newSynth().Synthesize(nil, flagged, model.ChildInfo{}, nil)
	if got := r.Strings(model.FieldObservations)[2]; got != "Red flags: Q4_shares_passwords, soft_many_zero_answers — immediate attention recommended." {
		t.Errorf("third observation = %q", got)
	}
}

func TestSynthesize_ObservationsPadded(t *testing.T) {
	r := newSynth().Synthesize(nil, model.Scores{RedFlags: []string{}}, model.ChildInfo{}, nil)
	got := r.Strings(model.FieldObservations)
	if len(got) != 3 {
		t.Fatalf("observations = %q, want 3 entries", got)
	}
	if got[0] != "Primary concern: cheating risk (0)." || got[1] != "" || got[2] != "" {
		t.Errorf("observations = %q", got)
	}
}

func TestSynthesize_TiesUseCatalogOrder(t *testing.T) {
	scores := scoring.ComputeScores(uniform("C"))
	r := newSynth().Synthesize(nil, scores, model.ChildInfo{}, nil)
	obs := r.Strings(model.FieldObservations)
	if obs[0] != "Strength: highest pillar E at 66.7%." {
		t.Errorf("strength = %q", obs[0])
	}
	if obs[1] != "Area to improve: lowest pillar SG at 66.7%." {
		t.Errorf("weakest = %q", obs[1])
	}
	if obs[2] != "Primary concern: cheating risk (33)." {
		t.Errorf("concern = %q", obs[2])
	}
}

func TestSynthesize_FollowUp(t *testing.T) {
	r := newSynth().Synthesize(nil, cleanScores(95), model.ChildInfo{}, nil)
	fu, ok := r[model.FieldFollowUp].(model.FollowUp)
	if !ok {
		t.Fatalf("follow_up has type %T", r[model.FieldFollowUp])
	}
	if fu.NextAssessmentDate != "2025-04-15" {
		t.Errorf("next_assessment_date = %q, want 2025-04-15", fu.NextAssessmentDate)
	}
	if fu.ConsultantRecommended != "Optional" {
		t.Errorf("consultant_recommended = %q, want Optional", fu.ConsultantRecommended)
	}

	flagged := cleanScores(95)
	flagged.RedFlags = []string{"Q1_cheating_high"}
	fu = newSynth().Synthesize(nil, flagged, model.ChildInfo{}, nil)[model.FieldFollowUp].(model.FollowUp)
	if fu.ConsultantRecommended != "Recommended" {
		t.Errorf("consultant_recommended = %q, want Recommended", fu.ConsultantRecommended)
	}
}

func TestSynthesize_CounselorNotes(t *testing.T) {
	r := newSynth().Synthesize(nil, cleanScores(95), model.ChildInfo{}, nil)
	if got := r.String(model.FieldCounselorNotes); got != "Counselor note: Review top concerns: No critical red flags." {
		t.Errorf("counselor_notes = %q", got)
	}
	flagged := cleanScores(95)
	flagged.RedFlags = []string{"a", "b"}
	r = newSynth().Synthesize(nil, flagged, model.ChildInfo{}, nil)
	if got := r.String(model.FieldCounselorNotes); got != "Counselor note: Review top concerns: a ; b" {
		t.Errorf("counselor_notes = %q", got)
	}
}

func TestSynthesize_AllBestConfidence(t *testing.T) {
	scores := scoring.ComputeScores(uniform("D"))
	r := newSynth().Synthesize(nil, scores, model.ChildInfo{}, nil)
	if r[model.FieldMonitorConfidence] != 100 {
		t.Errorf("monitor_confidence = %v, want 100", r[model.FieldMonitorConfidence])
	}
}

func TestMonitorConfidence(t *testing.T) {
	tests := []struct {
		overall float64
		flags   int
		want    int
	}{
		{100, 0, 100},
		{80, 2, 60},
		{80, 9, 30},
		{15, 1, 10},
		{0, 0, 10},
		{62.5, 0, 62},
		{63.5, 0, 64},
	}
	for _, tt := range tests {
		if got := synth.MonitorConfidence(tt.overall, tt.flags); got != tt.want {
			t.Errorf("MonitorConfidence(%v, %d) = %d, want %d", tt.overall, tt.flags, got, tt.want)
		}
	}
}

func TestSynthesize_PassThrough(t *testing.T) {
	partial := map[string]any{
		"header_summary":     "From the model.",
		"observations":       []any{"only one"},
		"monitor_confidence": float64(0),
		"score":              float64(12),
		"category":           nil,
		"narrative":          "raw text",
		"why_this_matters":   "",
		"follow_up":          map[string]any{},
	}
	r := newSynth().Synthesize(partial, cleanScores(95), model.ChildInfo{}, nil)

	if r.String(model.FieldHeaderSummary) != "From the model." {
		t.Errorf("header_summary was replaced: %v", r[model.FieldHeaderSummary])
	}
	if obs, ok := r[model.FieldObservations].([]any); !ok || len(obs) != 1 {
		t.Errorf("observations were not passed through: %#v", r[model.FieldObservations])
	}
	if r[model.FieldMonitorConfidence] != float64(0) {
		t.Errorf("monitor_confidence = %v, want the provided 0", r[model.FieldMonitorConfidence])
	}
	if r[model.FieldScore] != float64(12) {
		t.Errorf("score = %v, want the provided 12", r[model.FieldScore])
	}
	if v, ok := r[model.FieldCategory]; !ok || v != nil {
		t.Errorf("category = %v, want the provided nil kept", v)
	}
	if r[model.FieldNarrative] != "raw text" {
		t.Errorf("narrative = %v", r[model.FieldNarrative])
	}
	if r.String(model.FieldWhyThisMatters) == "" {
		t.Error("empty why_this_matters was not filled")
	}
	if _, ok := r[model.FieldFollowUp].(model.FollowUp); !ok {
		t.Errorf("empty follow_up was not filled: %#v", r[model.FieldFollowUp])
	}
	if len(partial) != 8 || partial["why_this_matters"] != "" {
		t.Error("partial was modified")
	}
}

func TestSynthesize_NullConfidenceFilled(t *testing.T) {
	r := newSynth().Synthesize(map[string]any{"monitor_confidence": nil}, cleanScores(95), model.ChildInfo{}, nil)
	if r[model.FieldMonitorConfidence] != 95 {
		t.Errorf("monitor_confidence = %v, want 95", r[model.FieldMonitorConfidence])
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{false, false},
		{true, true},
		{float64(0), false},
		{float64(0.5), true},
		{0, false},
		{[]any{}, false},
		{[]any{""}, true},
		{map[string]any{}, false},
		{map[string]any{"a": 1}, true},
		{model.FollowUp{}, true},
	}
	for _, tt := range tests {
		if got := synth.Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestFormatScore(t *testing.T) {
	for v, want := range map[float64]string{0: "0.0", 100: "100.0", 66.7: "66.7", 48: "48.0"} {
		if got := synth.FormatScore(v); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", v, got, want)
		}
	}
}
