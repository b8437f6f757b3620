// Package scoring turns a list of answers into pillar percentages, an
// overall score, a readiness category, red flags and risk indices.
//
// Everything here is a pure function of the answers and the catalog.
// Unanswered questions and unknown option keys always score 0.
package scoring

import (
	"sort"
	"strconv"

	"cares/internal/catalog"
	"cares/internal/model"
)

// Category thresholds
const (
	NotReadyBelow = 40.0
	AIReadyFrom   = 70.0
)

// Red-flag tags
const (
	FlagCheatingHigh         = "Q1_cheating_high"
	FlagSharesPasswords      = "Q4_shares_passwords"
	FlagNeverAsksBeforeShare = "Q7_never_asks_before_sharing"
	FlagPostsPersonalInfo    = "Q9_posts_personal_info_often"
	FlagFollowsRiskyAdvice   = "Q11_follow_risky_instructions"
	FlagSharesPrivatePhoto   = "Q14_share_private_photo"
	FlagPassesAIAsOwn        = "Q20_passes_ai_as_own"
	FlagCombinedPrivacy      = "combined_privacy_severe"
	FlagManyZeroAnswers      = "soft_many_zero_answers"
)

// ManyZeroThreshold is the zero-answer count that raises the soft flag
const ManyZeroThreshold = 3

type questionFlag struct {
	qid int
	tag string
}

// single-question red flags, in detection order
var questionFlags = []questionFlag{
	{1, FlagCheatingHigh},
	{4, FlagSharesPasswords},
	{7, FlagNeverAsksBeforeShare},
	{9, FlagPostsPersonalInfo},
	{11, FlagFollowsRiskyAdvice},
	{14, FlagSharesPrivatePhoto},
	{20, FlagPassesAIAsOwn},
}

// both must be answered and score 0 for the combined privacy flag
var combinedPrivacyQIDs = []int{7, 9}

var (
	cheatingQIDs    = []int{1, 20, 11}
	privacyQIDs     = []int{4, 7, 9, 14}
	impulseQIDs     = []int{3, 6, 8, 12}
	supervisionQIDs = []int{10, 19}
)

// ComputeScores scores answers against the embedded catalog
func ComputeScores(answers []model.Answer) model.Scores {
	return Compute(catalog.Default(), answers)
}

// Compute scores answers against cat.
//
// Per-question scoring and the single-question flags read the id->option
// map, where a repeated qid keeps its last answer. The combined flag and
// the risk indices read the first answer for a qid. Both behaviours are
// relied upon by stored reports. The combined flag only fires when Q7 and
// Q9 were both answered.
func Compute(cat *catalog.Catalog, answers []model.Answer) model.Scores {
	last := make(map[int]string, len(answers))
	for _, a := range answers {
		last[a.QID] = a.Option
	}

	acc := make(map[string]float64)
	ceil := make(map[string]float64)
	scored := make(map[int]int, cat.Len())
	zeros := 0

	for _, q := range cat.Questions() {
		s := 0
		if opt, ok := last[q.ID]; ok {
			s = cat.OptionScore(opt)
		}
		scored[q.ID] = s
		acc[q.Pillar] += float64(s) * q.Weight
		ceil[q.Pillar] += catalog.MaxOptionScore * q.Weight
		if s == 0 {
			zeros++
		}
	}

	flags := []string{}
	for _, f := range questionFlags {
		if s, ok := scored[f.qid]; ok && s == 0 {
			flags = append(flags, f.tag)
		}
	}
	combined := true
	for _, qid := range combinedPrivacyQIDs {
		opt, ok := firstOption(answers, qid)
		if !ok || cat.OptionScore(opt) != 0 {
			combined = false
			break
		}
	}
	if combined {
		flags = append(flags, FlagCombinedPrivacy)
	}
	if zeros >= ManyZeroThreshold {
		flags = append(flags, FlagManyZeroAnswers)
	}

	pillars := make(map[string]float64)
	overall := 0.0
	for _, p := range cat.Pillars() {
		denom := ceil[p.Code]
		if denom <= 0 {
			denom = 1
		}
		pct := round1(acc[p.Code] / denom * 100)
		pillars[p.Code] = pct
		overall += pct * p.Weight / 100
	}
	overall = round1(overall)

	return model.Scores{
		PillarPercentages: pillars,
		OverallScore:      overall,
		Category:          Categorize(overall, len(flags)),
		RedFlags:          flags,
		Risks: model.RiskIndices{
			CheatingRisk:             riskIndex(cat, answers, cheatingQIDs),
			PrivacyRisk:              riskIndex(cat, answers, privacyQIDs),
			ImpulseHallucinationRisk: riskIndex(cat, answers, impulseQIDs),
			SupervisionGap:           riskIndex(cat, answers, supervisionQIDs),
		},
	}
}

// Categorize applies the readiness thresholds. Any red flag vetoes a
// passing score.
func Categorize(overall float64, redFlags int) model.Category {
	switch {
	case overall < NotReadyBelow || redFlags > 0:
		return model.CategoryNotReady
	case overall >= AIReadyFrom:
		return model.CategoryAIReady
	default:
		return model.CategoryTransition
	}
}

// OrderedPillars returns the pillar percentages in catalog order
func OrderedPillars(cat *catalog.Catalog, s model.Scores) []model.PillarScore {
	out := make([]model.PillarScore, 0, len(s.PillarPercentages))
	seen := make(map[string]bool, len(s.PillarPercentages))
	for _, code := range cat.PillarCodes() {
		v, ok := s.PillarPercentages[code]
		if !ok {
			continue
		}
		seen[code] = true
		out = append(out, model.PillarScore{Pillar: code, Percent: v})
	}
	// pillars the catalog does not know about keep a stable order after the known ones
	var extra []string
	for code := range s.PillarPercentages {
		if !seen[code] {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	for _, code := range extra {
		out = append(out, model.PillarScore{Pillar: code, Percent: s.PillarPercentages[code]})
	}
	return out
}

func firstOption(answers []model.Answer, qid int) (string, bool) {
	for _, a := range answers {
		if a.QID == qid {
			return a.Option, true
		}
	}
	return "", false
}

// firstScore is 0 for an unanswered qid
func firstScore(cat *catalog.Catalog, answers []model.Answer, qid int) int {
	opt, ok := firstOption(answers, qid)
	if !ok {
		return 0
	}
	return cat.OptionScore(opt)
}

func riskIndex(cat *catalog.Catalog, answers []model.Answer, qids []int) int {
	if len(qids) == 0 {
		return 0
	}
	sum := 0
	for _, qid := range qids {
		sum += firstScore(cat, answers, qid)
	}
	avg := float64(sum) / float64(len(qids))
	return 100 - Round(avg/catalog.MaxOptionScore*100)
}

// roundTo rounds the exact binary value to prec decimals, ties to even.
// Scaling by 10^prec first turns 3.85 (just above in binary) into an exact tie.
func roundTo(v float64, prec int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', prec, 64), 64)
	return f
}

func round1(v float64) float64 {
	return roundTo(v, 1)
}

// Round rounds to the nearest integer, exact ties to even
func Round(v float64) int {
	return int(roundTo(v, 0))
}
