package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"cares/internal/extract"
)

// ExtractTool handles the extract_structured MCP tool
type ExtractTool struct{}

// NewExtractTool creates an ExtractTool
func NewExtractTool() *ExtractTool {
	return &ExtractTool{}
}

// Definition returns the MCP tool definition for registration
func (t *ExtractTool) Definition() mcp.Tool {
	return mcp.NewTool("extract_structured",
		mcp.WithDescription(
			"Pull the first JSON object out of free model text (fenced block, brace span, "+
				"whole text or a repaired object). Reports which strategy matched.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Untrusted generator output"),
		),
	)
}

type extractResult struct {
	Strategy extract.Strategy `json:"strategy"`
	Object   map[string]any   `json:"object"`
}

// Handle processes the extract_structured tool call
func (t *ExtractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := extract.Extract(req.GetString("text", ""))
	return jsonResult(extractResult{Strategy: res.Strategy, Object: res.Object})
}
