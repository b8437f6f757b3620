package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cares/internal/catalog"
	"cares/internal/model"
	"cares/internal/pdf"
	"cares/internal/scoring"
	"cares/internal/service"
	"cares/internal/synth"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	flagStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

type quizStage int

const (
	stageName quizStage = iota
	stageAge
	stageQuestions
	stageDone
)

// quizModel asks for the child's details, then one question at a time.
type quizModel struct {
	questions []catalog.Question
	options   []catalog.Option
	pillars   map[string]string

	stage     quizStage
	input     textinput.Model
	child     model.ChildInfo
	idx       int
	cursor    int
	answers   []model.Answer
	errMsg    string
	cancelled bool
}

func newQuizModel(cat *catalog.Catalog) quizModel {
	pillars := make(map[string]string)
	for _, p := range cat.Pillars() {
		pillars[p.Code] = p.Name
	}
	m := quizModel{
		questions: cat.Questions(),
		options:   cat.Options(),
		pillars:   pillars,
		input:     newInput("Child's name"),
	}
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Focus()
	return ti
}

func (m quizModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m quizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInput(msg)
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	}

	switch m.stage {
	case stageName:
		if key.Type != tea.KeyEnter {
			return m.updateInput(msg)
		}
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errMsg = "name is required"
			return m, nil
		}
		m.child.ChildName = name
		m.errMsg = ""
		m.stage = stageAge
		m.input = newInput(fmt.Sprintf("Age (%d-%d)", service.MinChildAge, service.MaxChildAge))
		return m, textinput.Blink

	case stageAge:
		if key.Type != tea.KeyEnter {
			return m.updateInput(msg)
		}
		age, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil || age < service.MinChildAge || age > service.MaxChildAge {
			m.errMsg = fmt.Sprintf("age must be a number between %d and %d", service.MinChildAge, service.MaxChildAge)
			return m, nil
		}
		m.child.ChildAge = age
		m.errMsg = ""
		m.stage = stageQuestions
		return m, nil

	case stageQuestions:
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m.choose(m.cursor)
		default:
			for i, o := range m.options {
				if strings.EqualFold(key.String(), o.Key) {
					return m.choose(i)
				}
			}
		}
	}
	return m, nil
}

func (m quizModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.stage != stageName && m.stage != stageAge {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m quizModel) choose(i int) (tea.Model, tea.Cmd) {
	m.answers = append(m.answers, model.Answer{QID: m.questions[m.idx].ID, Option: m.options[i].Key})
	m.idx++
	m.cursor = 0
	if m.idx >= len(m.questions) {
		m.stage = stageDone
		return m, tea.Quit
	}
	return m, nil
}

func (m quizModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CARES questionnaire") + "\n\n")

	switch m.stage {
	case stageName, stageAge:
		b.WriteString(m.input.View() + "\n")
	case stageQuestions:
		q := m.questions[m.idx]
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Question %d of %d · %s", m.idx+1, len(m.questions), m.pillars[q.Pillar])) + "\n")
		b.WriteString(q.Text + "\n\n")
		for i, o := range m.options {
			line := fmt.Sprintf("%s) %s", o.Key, o.Label)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n" + mutedStyle.Render("↑/↓ move · enter or A-D choose · esc quit") + "\n")
	case stageDone:
		return ""
	}

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

func runQuiz(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: caresctl quiz [report.pdf]")
	}
	cat := catalog.Default()

	result, err := tea.NewProgram(newQuizModel(cat)).Run()
	if err != nil {
		return err
	}
	final, ok := result.(quizModel)
	if !ok || final.cancelled || final.stage != stageDone {
		return fmt.Errorf("quiz cancelled")
	}

	scores := scoring.Compute(cat, final.answers)
	report := synth.NewSynthesizer(cat, nil).Synthesize(nil, scores, final.child, final.answers)
	printReport(stdout, cat, scores, report)

	if len(args) == 1 {
		now := time.Now()
		data, err := pdf.Render(cat, &model.ReportRecord{
			ID:           now.UnixMilli(),
			Timestamp:    float64(now.UnixNano()) / 1e9,
			Child:        final.child,
			Answers:      final.answers,
			Scores:       scores,
			AIStructured: report,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nPDF written to %s\n", args[0])
	}
	return nil
}

// printReport renders scores and the synthesized report for the terminal
func printReport(w io.Writer, cat *catalog.Catalog, scores model.Scores, report model.StructuredReport) {
	header := fmt.Sprintf("%s\n%s / 100  ·  %s",
		report.String(model.FieldHeaderSummary), synth.FormatScore(scores.OverallScore), scores.Category)
	fmt.Fprintln(w, boxStyle.Render(header))

	names := make(map[string]string)
	for _, p := range cat.Pillars() {
		names[p.Code] = p.Name
	}
	fmt.Fprintln(w, titleStyle.Render("\nPillars"))
	for _, p := range scoring.OrderedPillars(cat, scores) {
		fmt.Fprintf(w, "  %-28s %6s%%\n", names[p.Pillar], synth.FormatScore(p.Percent))
	}

	fmt.Fprintln(w, titleStyle.Render("\nRisks"))
	for _, r := range scores.Risks.Ordered() {
		fmt.Fprintf(w, "  %-28s %6d\n", r.Name, r.Value)
	}

	if len(scores.RedFlags) > 0 {
		fmt.Fprintln(w, titleStyle.Render("\nRed flags"))
		for _, f := range scores.RedFlags {
			fmt.Fprintln(w, "  "+flagStyle.Render(f))
		}
	}

	fmt.Fprintln(w, titleStyle.Render("\nSummary"))
	fmt.Fprintln(w, "  "+report.String(model.FieldProfessionalParagraph))

	printList(w, "Observations", report.Strings(model.FieldObservations))
	if plan, ok := report[model.FieldImprovementPlan].(model.ImprovementPlan); ok {
		printList(w, "Next 30 days", plan.Days30)
		printList(w, "Next 60 days", plan.Days60)
		printList(w, "Next 90 days", plan.Days90)
	}
	printList(w, "Family rules", report.Strings(model.FieldRecommendedFamilyRules))

	if f, ok := report[model.FieldFollowUp].(model.FollowUp); ok {
		fmt.Fprintln(w, titleStyle.Render("\nFollow-up"))
		fmt.Fprintf(w, "  next assessment %s · %s\n", f.NextAssessmentDate, f.ConsultantRecommended)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render("\n"+title))
	for _, it := range items {
		fmt.Fprintln(w, "  - "+it)
	}
}
