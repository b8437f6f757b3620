package mcptools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"cares/internal/catalog"
	"cares/internal/extract"
	"cares/internal/model"
	"cares/internal/scoring"
	"cares/internal/synth"
)

// SynthesizeTool handles the synthesize_report MCP tool
type SynthesizeTool struct {
	catalog *catalog.Catalog
	synth   *synth.Synthesizer
}

// NewSynthesizeTool creates a SynthesizeTool. A nil clock uses time.Now.
func NewSynthesizeTool(cat *catalog.Catalog, now func() time.Time) *SynthesizeTool {
	return &SynthesizeTool{catalog: cat, synth: synth.NewSynthesizer(cat, now)}
}

// Definition returns the MCP tool definition for registration
func (t *SynthesizeTool) Definition() mcp.Tool {
	return mcp.NewTool("synthesize_report",
		mcp.WithDescription(
			"Build the complete parent report for a questionnaire. Optional generator text is "+
				"parsed first and its fields kept; every missing field is filled from the scores.",
		),
		mcp.WithString("answers_json",
			mcp.Required(),
			mcp.Description(`JSON array of answers, e.g. [{"qid":1,"option":"D"}]`),
		),
		mcp.WithString("child_name",
			mcp.Required(),
			mcp.Description("Child's name, used in the summary"),
		),
		mcp.WithNumber("child_age",
			mcp.Description("Child's age in years"),
		),
		mcp.WithString("generator_text",
			mcp.Description("Optional model output to merge into the report"),
		),
	)
}

type synthesizeResult struct {
	Scores   model.Scores           `json:"scores"`
	Strategy extract.Strategy       `json:"extract_strategy,omitempty"`
	Report   model.StructuredReport `json:"report"`
}

// Handle processes the synthesize_report tool call
func (t *SynthesizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answers, err := parseAnswers(req.GetString("answers_json", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := strings.TrimSpace(req.GetString("child_name", ""))
	if name == "" {
		return mcp.NewToolResultError("'child_name' is required"), nil
	}
	child := model.ChildInfo{ChildName: name, ChildAge: req.GetInt("child_age", 0)}

	scores := scoring.Compute(t.catalog, answers)

	partial, strategy := extract.Partial(req.GetString("generator_text", ""))

	return jsonResult(synthesizeResult{
		Scores:   scores,
		Strategy: strategy,
		Report:   t.synth.Synthesize(partial, scores, child, answers),
	})
}
