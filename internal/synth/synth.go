// Package synth completes a partially generated report so that every field
// of the report schema is present.
//
// Each field is filled independently: a value that is present and truthy in
// the partial object passes through untouched, anything else is replaced by
// a default derived from the scores.
package synth

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"cares/internal/catalog"
	"cares/internal/model"
	"cares/internal/scoring"
)

// RiskMentionThreshold is the lowest risk value narrated in the paragraph
const RiskMentionThreshold = 40

// PositiveFrom is the overall score at which a clean profile gets the short
// positive paragraph
const PositiveFrom = 90.0

// FollowUpAfter is the default gap to the next assessment
const FollowUpAfter = 90 * 24 * time.Hour

const defaultChildName = "The child"

const whyThisMatters = "This assessment highlights behaviour and supervision gaps that may expose the child to privacy, safety, or academic risks; " +
	"acting on the improvement plan reduces these risks and builds sustainable, safe AI habits."

const (
	prioritiesSentence = "Immediate priorities for caregivers: 1) re-affirm clear 'ask-before-share' rules; 2) remove password-sharing risks and set simple account controls; 3) run brief supervised AI-review sessions to practice source-checking and attribution."
	closingSentence    = "These recommendations are concise, evidence-aligned, and intended to reduce urgent risk while building skills; schedule a 90-day follow-up to review progress and adapt the plan."
)

var defaultPlan = model.ImprovementPlan{
	Days30: []string{
		"Set clear family AI rules and routines (ask-before-use; no password sharing).",
		"Practice one supervised AI session daily to review outputs together.",
		"Teach one skill: identifying questionable content (source check).",
	},
	Days60: []string{
		"Introduce short weekly reflections: did AI help or cause issues?",
		"Create a simple checklist for homework authenticity and source verification.",
		"Add minor independence tasks with checkpoints (e.g., request permission for new app).",
	},
	Days90: []string{
		"Gradually increase independent use with periodic reviews and accountability.",
		"Co-create a family document of rules and consequences around AI and privacy.",
		"Schedule a follow-up assessment and review progress against initial risks.",
	},
}

var defaultFamilyRules = []string{
	"Do not share passwords or OTPs with anyone.",
	"Always ask a parent before installing new apps or sharing photos/locations.",
	"Label AI-generated content and get approval before submission.",
	"Use privacy settings: keep accounts private and block/report strangers.",
	"Establish screen-free times (meals, 1 hour before bed).",
}

var defaultResources = []model.Resource{
	{Title: "Child Online Safety Guide", URL: "https://www.commonsense.org"},
	{Title: "Teaching Digital Literacy", URL: "https://www.digitalcitizenship.org"},
}

// Synthesizer fills report defaults. The clock is only read for the
// follow-up date.
type Synthesizer struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewSynthesizer builds a synthesizer over cat. A nil clock means time.Now.
func NewSynthesizer(cat *catalog.Catalog, now func() time.Time) *Synthesizer {
	if cat == nil {
		cat = catalog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{catalog: cat, now: now}
}

// Synthesize completes partial with the embedded catalog and the wall clock
func Synthesize(partial map[string]any, scores model.Scores, child model.ChildInfo, answers []model.Answer) model.StructuredReport {
	return NewSynthesizer(nil, nil).Synthesize(partial, scores, child, answers)
}

// profile is the score-derived view shared by the fill steps
type profile struct {
	name     string
	overall  float64
	category model.Category
	flags    []string
	pillars  []model.PillarScore // descending, stable on catalog order
	risks    []model.RiskIndex   // descending, stable on declaration order
}

func (p profile) best() (model.PillarScore, bool) {
	if len(p.pillars) == 0 {
		return model.PillarScore{}, false
	}
	return p.pillars[0], true
}

func (p profile) worst() (model.PillarScore, bool) {
	if len(p.pillars) == 0 {
		return model.PillarScore{}, false
	}
	return p.pillars[len(p.pillars)-1], true
}

func (p profile) topRisk() (model.RiskIndex, bool) {
	if len(p.risks) == 0 {
		return model.RiskIndex{}, false
	}
	return p.risks[0], true
}

type fillStep struct {
	field string
	fill  func(p profile) any
}

// Synthesize returns a new report; partial is never modified.
// The answers are accepted for parity with the scoring input and are not
// currently narrated.
func (s *Synthesizer) Synthesize(partial map[string]any, scores model.Scores, child model.ChildInfo, _ []model.Answer) model.StructuredReport {
	out := make(model.StructuredReport, len(partial)+12)
	for k, v := range partial {
		out[k] = v
	}

	p := s.profile(scores, child)

	steps := []fillStep{
		{model.FieldHeaderSummary, headerSummary},
		{model.FieldProfessionalParagraph, professionalParagraph},
		{model.FieldObservations, observations},
		{model.FieldWhyThisMatters, func(profile) any { return whyThisMatters }},
		{model.FieldImprovementPlan, func(profile) any { return clonePlan(defaultPlan) }},
		{model.FieldRecommendedFamilyRules, func(profile) any { return append([]string(nil), defaultFamilyRules...) }},
		{model.FieldFollowUp, s.followUp},
		{model.FieldCounselorNotes, counselorNotes},
		{model.FieldSuggestedResources, func(profile) any { return append([]model.Resource(nil), defaultResources...) }},
	}
	for _, step := range steps {
		if !Truthy(out[step.field]) {
			out[step.field] = step.fill(p)
		}
	}

	// zero is a legitimate confidence, only a missing value is filled
	if v, ok := out[model.FieldMonitorConfidence]; !ok || v == nil {
		out[model.FieldMonitorConfidence] = MonitorConfidence(p.overall, len(p.flags))
	}

	if _, ok := out[model.FieldScore]; !ok {
		out[model.FieldScore] = scores.OverallScore
	}
	if _, ok := out[model.FieldCategory]; !ok {
		out[model.FieldCategory] = string(scores.Category)
	}
	return out
}

func (s *Synthesizer) profile(scores model.Scores, child model.ChildInfo) profile {
	name := child.ChildName
	if name == "" {
		name = defaultChildName
	}

	pillars := scoring.OrderedPillars(s.catalog, scores)
	sort.SliceStable(pillars, func(i, j int) bool { return pillars[i].Percent > pillars[j].Percent })

	risks := scores.Risks.Ordered()
	sort.SliceStable(risks, func(i, j int) bool { return risks[i].Value > risks[j].Value })

	return profile{
		name:     name,
		overall:  scores.OverallScore,
		category: scores.Category,
		flags:    scores.RedFlags,
		pillars:  pillars,
		risks:    risks,
	}
}

func headerSummary(p profile) any {
	return fmt.Sprintf("%s is assessed as %s with a score of %s.", p.name, p.category, FormatScore(p.overall))
}

func professionalParagraph(p profile) any {
	top, hasRisk := p.topRisk()
	mentionRisk := hasRisk && top.Value >= RiskMentionThreshold

	if p.overall >= PositiveFrom && len(p.flags) == 0 && !mentionRisk {
		return strings.Join([]string{
			fmt.Sprintf("%s scored %s (%s) on the CARES assessment, demonstrating excellent digital habits across measured pillars.", p.name, FormatScore(p.overall), p.category),
			"No immediate safety concerns identified; continue current supervision and digital routines.",
			"A routine 90-day check-in is suggested to ensure sustained habits.",
		}, " ")
	}

	sentences := []string{
		fmt.Sprintf("%s scored %s (%s) on the CARES assessment.", p.name, FormatScore(p.overall), p.category),
	}
	if best, ok := p.best(); ok {
		worst, _ := p.worst()
		sentences = append(sentences, fmt.Sprintf("Performance shows strongest area: %s (%s%%) with area for improvement: %s (%s%%).",
			best.Pillar, FormatScore(best.Percent), worst.Pillar, FormatScore(worst.Percent)))
	}
	if mentionRisk {
		sentences = append(sentences, fmt.Sprintf("The primary risk signal is %s (%d%%), which suggests prioritized attention to behaviours that increase privacy or academic risk.",
			humanize(top.Name), top.Value))
	}
	if len(p.flags) > 0 {
		sentences = append(sentences, fmt.Sprintf("Notable immediate concerns: %s.", strings.Join(p.flags, ", ")))
	}
	sentences = append(sentences, prioritiesSentence, closingSentence)
	return strings.Join(sentences, " ")
}

func observations(p profile) any {
	obs := make([]string, 0, 3)
	if best, ok := p.best(); ok {
		worst, _ := p.worst()
		obs = append(obs,
			fmt.Sprintf("Strength: highest pillar %s at %s%%.", best.Pillar, FormatScore(best.Percent)),
			fmt.Sprintf("Area to improve: lowest pillar %s at %s%%.", worst.Pillar, FormatScore(worst.Percent)),
		)
	}
	switch top, ok := p.topRisk(); {
	case len(p.flags) > 0:
		obs = append(obs, fmt.Sprintf("Red flags: %s — immediate attention recommended.", strings.Join(p.flags, ", ")))
	case ok:
		obs = append(obs, fmt.Sprintf("Primary concern: %s (%d).", humanize(top.Name), top.Value))
	default:
		obs = append(obs, "No immediate high-risk indicators detected.")
	}
	for len(obs) < 3 {
		obs = append(obs, "")
	}
	return obs[:3]
}

func (s *Synthesizer) followUp(p profile) any {
	consultant := "Optional"
	if len(p.flags) > 0 {
		consultant = "Recommended"
	}
	return model.FollowUp{
		NextAssessmentDate:    s.now().UTC().Add(FollowUpAfter).Format("2006-01-02"),
		ConsultantRecommended: consultant,
	}
}

func counselorNotes(p profile) any {
	notes := "No critical red flags."
	if len(p.flags) > 0 {
		notes = strings.Join(p.flags, " ; ")
	}
	return "Counselor note: Review top concerns: " + notes
}

// MonitorConfidence degrades the rounded overall score by 10 per red flag,
// with the penalty capped at 50 and the result floored at 10.
func MonitorConfidence(overall float64, redFlags int) int {
	penalty := 10 * redFlags
	if penalty > 50 {
		penalty = 50
	}
	conf := scoring.Round(overall) - penalty
	if conf < 10 {
		conf = 10
	}
	return conf
}

// FormatScore renders a score with at least one decimal, e.g. 100.0 or 66.7
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Truthy reports whether a decoded value counts as provided: nil, false,
// zero numbers and empty strings, slices and maps do not.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case bool:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func clonePlan(p model.ImprovementPlan) model.ImprovementPlan {
	return model.ImprovementPlan{
		Days30: append([]string(nil), p.Days30...),
		Days60: append([]string(nil), p.Days60...),
		Days90: append([]string(nil), p.Days90...),
	}
}
