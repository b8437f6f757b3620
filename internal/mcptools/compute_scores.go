package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"cares/internal/catalog"
	"cares/internal/scoring"
)

// ComputeScoresTool handles the compute_scores MCP tool
type ComputeScoresTool struct {
	catalog *catalog.Catalog
}

// NewComputeScoresTool creates a ComputeScoresTool
func NewComputeScoresTool(cat *catalog.Catalog) *ComputeScoresTool {
	return &ComputeScoresTool{catalog: cat}
}

// Definition returns the MCP tool definition for registration
func (t *ComputeScoresTool) Definition() mcp.Tool {
	return mcp.NewTool("compute_scores",
		mcp.WithDescription(
			"Score a questionnaire: pillar percentages, overall score, category, "+
				"red flags and risk indices. Unknown questions and options score as worst case.",
		),
		mcp.WithString("answers_json",
			mcp.Required(),
			mcp.Description(`JSON array of answers, e.g. [{"qid":1,"option":"D"}]`),
		),
	)
}

// Handle processes the compute_scores tool call
func (t *ComputeScoresTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answers, err := parseAnswers(req.GetString("answers_json", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(scoring.Compute(t.catalog, answers))
}
