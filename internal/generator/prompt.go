package generator

import (
	"fmt"
	"strings"

	"cares/internal/catalog"
	"cares/internal/model"
)

// SystemInstruction sets the consultant persona and the JSON-only contract
const SystemInstruction = "You are a world-class child-development consultant, licensed child psychologist, and AI-safety specialist writing for CARES. " +
	"Adopt a professional, evidence-based, and deeply empathetic tone: concise but thorough, actionable, and suitable for inclusion in a formal report for caregivers and school counsellors. " +
	"Return only valid JSON (no extra explanatory text) unless explicitly asked. The JSON must include the following top-level fields: header_summary (string), professional_paragraph (string), observations (array of 3 strings), " +
	"why_this_matters (string), improvement_plan (object with keys '30_days','60_days','90_days' each an array of 3 concise bullets), " +
	"recommended_family_rules (array of 5 short rules), follow_up (object with next_assessment_date and consultant_recommended), " +
	"monitor_confidence (number 0-100), counselor_notes (string), suggested_resources (array of {title, url}), and a compact 'score' and 'category'. " +
	"The field 'professional_paragraph' must be a polished, evidence-linked paragraph (3-6 sentences) that: summarizes key findings, links them briefly to pillar results or specific indicators (by pillar or QID), interprets likely behavioral or developmental implications, states immediate priority actions for caregivers, and sets a clear next-step timeline. " +
	"Also include an optional 'raw_observations' string if helpful. Output should be JSON only."

// ExampleMessage shows the model the expected output shape
const ExampleMessage = "Example JSON:\n```json\n{\n" +
	"  \"score\": 72,\n" +
	"  \"category\": \"AI-READY\",\n" +
	"  \"header_summary\": \"This 12-year-old shows strong digital habits with minor supervision needs.\",\n" +
	"  \"professional_paragraph\": \"This child demonstrates practical understanding of digital safety with clear areas for guided improvement. Based on pillar scores (DH strong, CC moderate) and specific indicators (occasional oversharing and password risk), immediate priorities are to reinforce password safety, set clearer share rules, and run supervised AI review sessions twice weekly. These steps are recommended to reduce privacy risk while building critical thinking skills; a 90-day follow-up is advised to monitor progress.\",\n" +
	"  \"observations\": [\"Observation 1\", \"Observation 2\", \"Observation 3\"],\n" +
	"  \"why_this_matters\": \"Short risk sentence.\",\n" +
	"  \"improvement_plan\": {\n" +
	"    \"30_days\": [\"Do X\", \"Do Y\", \"Do Z\"],\n" +
	"    \"60_days\": [\"Do A\", \"Do B\", \"Do C\"],\n" +
	"    \"90_days\": [\"Do L\", \"Do M\", \"Do N\"]\n" +
	"  },\n" +
	"  \"recommended_family_rules\": [\"Rule1\",\"Rule2\",\"Rule3\",\"Rule4\",\"Rule5\"],\n" +
	"  \"follow_up\": {\"next_assessment_date\": \"2025-11-01\", \"consultant_recommended\": \"Optional\"},\n" +
	"  \"monitor_confidence\": 78,\n" +
	"  \"counselor_notes\": \"Short professional note.\",\n" +
	"  \"suggested_resources\": [{\"title\": \"Resource 1\", \"url\": \"https://example.org\"}]\n" +
	"}\n```"

const fieldRequest = "Please return a JSON object with fields: score, category, insights (short narrative), improvement_plan (30/60/90 day bullets), header_summary, observations (3 bullets), why_this_matters (1 sentence), recommended_family_rules (5 bullets), follow_up (next assessment date + whether consultant recommended), monitor_confidence (line with confidence 0-100)."

// BuildPrompt renders the child details and every submitted answer, in
// submission order, for the generator
func BuildPrompt(cat *catalog.Catalog, child model.ChildInfo, answers []model.Answer) string {
	lines := []string{
		fmt.Sprintf("Child: %s (age %d)", child.ChildName, child.ChildAge),
		fmt.Sprintf("Parent contact: %s", child.ParentContact),
		"\nAnswers:",
	}
	for _, a := range answers {
		text := "unknown"
		if q, ok := cat.Question(a.QID); ok {
			text = q.Text
		}
		lines = append(lines, fmt.Sprintf("Q%d: %s -> %s", a.QID, text, a.Option))
	}
	lines = append(lines, "\n"+fieldRequest)
	return strings.Join(lines, "\n")
}
