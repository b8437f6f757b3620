// Package pdf renders a stored assessment report as a printable document.
package pdf

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"cares/internal/catalog"
	"cares/internal/model"
	"cares/internal/scoring"
	"cares/internal/synth"
)

type color struct {
	R, G, B int
}

func (c color) fill(pdf *gofpdf.Fpdf) { pdf.SetFillColor(c.R, c.G, c.B) }
func (c color) draw(pdf *gofpdf.Fpdf) { pdf.SetDrawColor(c.R, c.G, c.B) }
func (c color) text(pdf *gofpdf.Fpdf) { pdf.SetTextColor(c.R, c.G, c.B) }

var (
	colorText     = color{15, 23, 42}    // slate-900
	colorMute     = color{71, 85, 105}   // slate-600
	colorBorder   = color{226, 232, 240} // slate-200
	colorHeader   = color{37, 99, 235}   // blue-600
	colorWhite    = color{255, 255, 255}
	colorGood     = color{34, 197, 94}  // green-500
	colorWarn     = color{250, 204, 21} // yellow-400
	colorBad      = color{248, 113, 113}
	colorRedFlag  = color{220, 38, 38}
	colorBarTrack = color{226, 232, 240}
)

const (
	fontFamily = "Helvetica"
	pageMargin = 14.0
	lineHeight = 5.2
)

func categoryColor(c model.Category) color {
	switch c {
	case model.CategoryAIReady:
		return colorGood
	case model.CategoryTransition:
		return colorWarn
	default:
		return colorBad
	}
}

// riskColor is inverted: higher risk is worse
func riskColor(v int) color {
	switch {
	case v >= 70:
		return colorBad
	case v >= 40:
		return colorWarn
	default:
		return colorGood
	}
}

func percentColor(v float64) color {
	switch {
	case v >= scoring.AIReadyFrom:
		return colorGood
	case v >= scoring.NotReadyBelow:
		return colorWarn
	default:
		return colorBad
	}
}

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	cat *catalog.Catalog
}

// Render produces a PDF for one stored record. Narrative fields may hold any
// decoded JSON shape; strings and lists render as text, everything else via
// fmt. A record without narrative renders its scores only.
func Render(cat *catalog.Catalog, rec *model.ReportRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("pdf: nil record")
	}
	if cat == nil {
		cat = catalog.Default()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(fmt.Sprintf("CARES report %d", rec.ID), true)
	pdf.SetCreator("cares", true)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), cat: cat}
	pdf.AddPage()

	r.header(rec)
	r.scoreBadge(rec.Scores)
	r.pillars(rec.Scores)
	r.risks(rec.Scores.Risks)
	r.redFlags(rec.Scores.RedFlags)

	if rec.HasNarrative() {
		rep := rec.AIStructured
		r.paragraph("Summary", rep[model.FieldProfessionalParagraph])
		r.list("Observations", rep[model.FieldObservations])
		r.paragraph("Why this matters", rep[model.FieldWhyThisMatters])
		r.plan(rep[model.FieldImprovementPlan])
		r.list("Recommended family rules", rep[model.FieldRecommendedFamilyRules])
		r.followUp(rep[model.FieldFollowUp])
		r.paragraph("Counselor notes", rep[model.FieldCounselorNotes])
		r.resources(rep[model.FieldSuggestedResources])
	} else {
		r.paragraph("Narrative", "No narrative is available for this report.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render report %d: %w", rec.ID, err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) header(rec *model.ReportRecord) {
	pdf := r.pdf
	pageW, _ := pdf.GetPageSize()
	w := pageW - 2*pageMargin

	colorHeader.fill(pdf)
	pdf.Rect(pageMargin, pageMargin, w, 24, "F")
	colorWhite.text(pdf)
	pdf.SetXY(pageMargin+5, pageMargin+4)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(w-10, 8, r.tr("Child AI-Readiness Report"), "", 1, "L", false, 0, "")

	pdf.SetX(pageMargin + 5)
	pdf.SetFont(fontFamily, "", 10)
	when := time.Unix(0, int64(rec.Timestamp*1e9)).UTC().Format("2006-01-02 15:04 UTC")
	sub := fmt.Sprintf("%s, age %d  |  %s  |  report #%d", rec.Child.ChildName, rec.Child.ChildAge, when, rec.ID)
	pdf.CellFormat(w-10, 6, r.tr(sub), "", 1, "L", false, 0, "")

	pdf.SetY(pageMargin + 28)
	if rec.HasNarrative() {
		if s := rec.AIStructured.String(model.FieldHeaderSummary); s != "" {
			colorText.text(pdf)
			pdf.SetFont(fontFamily, "I", 10)
			pdf.MultiCell(0, lineHeight, r.tr(s), "", "L", false)
			pdf.Ln(2)
		}
	}
}

func (r *renderer) scoreBadge(s model.Scores) {
	pdf := r.pdf
	y := pdf.GetY()
	c := categoryColor(s.Category)

	c.draw(pdf)
	colorWhite.fill(pdf)
	pdf.SetLineWidth(0.6)
	pdf.RoundedRect(pageMargin, y, 70, 16, 4, "1234", "FD")
	colorText.text(pdf)
	pdf.SetXY(pageMargin, y+2)
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(70, 7, r.tr(fmt.Sprintf("%s / 100", formatScore(s.OverallScore))), "", 2, "C", false, 0, "")
	pdf.SetFont(fontFamily, "B", 10)
	c.text(pdf)
	pdf.CellFormat(70, 5, r.tr(string(s.Category)), "", 0, "C", false, 0, "")
	pdf.SetY(y + 20)
	pdf.SetLineWidth(0.2)
}

func (r *renderer) pillars(s model.Scores) {
	r.section("Pillars")
	names := make(map[string]string)
	for _, p := range r.cat.Pillars() {
		names[p.Code] = p.Name
	}
	for _, p := range scoring.OrderedPillars(r.cat, s) {
		label := p.Pillar
		if n := names[p.Pillar]; n != "" {
			label = n
		}
		r.bar(label, formatScore(p.Percent)+"%", p.Percent/100, percentColor(p.Percent))
	}
	r.pdf.Ln(2)
}

func (r *renderer) risks(risks model.RiskIndices) {
	r.section("Risk indices")
	for _, ri := range risks.Ordered() {
		r.bar(humanize(ri.Name), fmt.Sprintf("%d", ri.Value), float64(ri.Value)/100, riskColor(ri.Value))
	}
	r.pdf.Ln(2)
}

func (r *renderer) bar(label, value string, frac float64, c color) {
	pdf := r.pdf
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	y := pdf.GetY()
	colorMute.text(pdf)
	pdf.SetFont(fontFamily, "", 9.5)
	pdf.SetXY(pageMargin, y)
	pdf.CellFormat(55, 6, r.tr(label), "", 0, "L", false, 0, "")

	x := pageMargin + 57
	const w, h = 100.0, 3.6
	colorBarTrack.fill(pdf)
	pdf.RoundedRect(x, y+1.2, w, h, h/2, "1234", "F")
	if frac > 0 {
		c.fill(pdf)
		pdf.RoundedRect(x, y+1.2, w*frac, h, h/2, "1234", "F")
	}

	colorText.text(pdf)
	pdf.SetXY(x+w+3, y)
	pdf.CellFormat(20, 6, r.tr(value), "", 1, "L", false, 0, "")
}

func (r *renderer) redFlags(flags []string) {
	if len(flags) == 0 {
		return
	}
	r.section("Red flags")
	colorRedFlag.text(r.pdf)
	r.pdf.SetFont(fontFamily, "", 10)
	for _, f := range flags {
		r.pdf.MultiCell(0, lineHeight, r.tr("- "+f), "", "L", false)
	}
	r.pdf.Ln(2)
}

func (r *renderer) section(title string) {
	pdf := r.pdf
	pdf.Ln(1)
	colorHeader.text(pdf)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 7, r.tr(title), "", 1, "L", false, 0, "")
	colorBorder.draw(pdf)
	y := pdf.GetY()
	pageW, _ := pdf.GetPageSize()
	pdf.Line(pageMargin, y, pageW-pageMargin, y)
	pdf.Ln(1.5)
}

func (r *renderer) paragraph(title string, v any) {
	lines := model.ToStrings(v)
	if len(lines) == 0 {
		return
	}
	r.section(title)
	colorText.text(r.pdf)
	r.pdf.SetFont(fontFamily, "", 10)
	r.pdf.MultiCell(0, lineHeight, r.tr(strings.Join(lines, " ")), "", "L", false)
	r.pdf.Ln(1)
}

func (r *renderer) list(title string, v any) {
	lines := model.ToStrings(v)
	if len(lines) == 0 {
		return
	}
	r.section(title)
	r.bullets(lines)
}

func (r *renderer) bullets(lines []string) {
	colorText.text(r.pdf)
	r.pdf.SetFont(fontFamily, "", 10)
	for _, l := range lines {
		r.pdf.MultiCell(0, lineHeight, r.tr("- "+l), "", "L", false)
	}
	r.pdf.Ln(1)
}

func (r *renderer) plan(v any) {
	if v == nil {
		return
	}
	r.section("Improvement plan")
	switch p := v.(type) {
	case model.ImprovementPlan:
		r.planStep("30 days", p.Days30)
		r.planStep("60 days", p.Days60)
		r.planStep("90 days", p.Days90)
	default:
		m, ok := asMap(v)
		if !ok {
			r.bullets(model.ToStrings(v))
			return
		}
		for _, k := range sortedKeys(m) {
			r.planStep(humanize(k), model.ToStrings(m[k]))
		}
	}
}

func (r *renderer) planStep(label string, items []string) {
	if len(items) == 0 {
		return
	}
	colorMute.text(r.pdf)
	r.pdf.SetFont(fontFamily, "B", 10)
	r.pdf.CellFormat(0, 6, r.tr(label), "", 1, "L", false, 0, "")
	r.bullets(items)
}

func (r *renderer) followUp(v any) {
	switch f := v.(type) {
	case nil:
		return
	case model.FollowUp:
		r.section("Follow-up")
		r.bullets([]string{
			"Next assessment: " + f.NextAssessmentDate,
			"Consultant: " + f.ConsultantRecommended,
		})
	default:
		m, ok := asMap(v)
		if !ok {
			r.paragraph("Follow-up", v)
			return
		}
		r.section("Follow-up")
		var lines []string
		for _, k := range sortedKeys(m) {
			lines = append(lines, fmt.Sprintf("%s: %v", humanize(k), m[k]))
		}
		r.bullets(lines)
	}
}

func (r *renderer) resources(v any) {
	var lines []string
	switch rs := v.(type) {
	case nil:
		return
	case []model.Resource:
		for _, res := range rs {
			lines = append(lines, res.Title+" - "+res.URL)
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			lines = model.ToStrings(v)
			break
		}
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if m, ok := asMap(item); ok {
				lines = append(lines, fmt.Sprintf("%v - %v", m["title"], m["url"]))
				continue
			}
			lines = append(lines, fmt.Sprint(item))
		}
	}
	if len(lines) == 0 {
		return
	}
	r.section("Suggested resources")
	r.bullets(lines)
}

// asMap accepts decoded JSON objects and driver map types such as bson.M
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatScore(v float64) string {
	return synth.FormatScore(v)
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
