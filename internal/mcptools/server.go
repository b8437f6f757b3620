// Package mcptools exposes the offline scoring, extraction and synthesis
// steps as MCP tools.
//
// Every tool is pure: nothing is stored and no generator is called.
package mcptools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cares/internal/catalog"
	"cares/internal/model"
)

// Version is reported to MCP clients
const Version = "0.1.0"

// NewServer builds an MCP server with all tools registered
func NewServer(cat *catalog.Catalog) *server.MCPServer {
	if cat == nil {
		cat = catalog.Default()
	}

	s := server.NewMCPServer(
		"cares",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Score child AI-readiness questionnaires and build parent reports offline. "+
			"Answers are a JSON array of {\"qid\": <int>, \"option\": \"A\"|\"B\"|\"C\"|\"D\"}."),
	)

	scoresTool := NewComputeScoresTool(cat)
	s.AddTool(scoresTool.Definition(), scoresTool.Handle)

	extractTool := NewExtractTool()
	s.AddTool(extractTool.Definition(), extractTool.Handle)

	synthTool := NewSynthesizeTool(cat, nil)
	s.AddTool(synthTool.Definition(), synthTool.Handle)

	return s
}

// parseAnswers decodes the answers_json argument
func parseAnswers(raw string) ([]model.Answer, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("'answers_json' is required")
	}
	var answers []model.Answer
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, fmt.Errorf("'answers_json' must be a JSON array of {qid, option}: %w", err)
	}
	return answers, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
