package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"cares/internal/catalog"
	"cares/internal/model"
)

func toolReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

func getResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func allAnswers(option string) string {
	parts := make([]string, 20)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"qid":%d,"option":%q}`, i+1, option)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestComputeScoresTool_Definition(t *testing.T) {
	def := NewComputeScoresTool(catalog.Default()).Definition()
	if def.Name != "compute_scores" {
		t.Errorf("tool name = %q, want compute_scores", def.Name)
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "answers_json" {
		t.Errorf("required = %v, want [answers_json]", def.InputSchema.Required)
	}
}

func TestComputeScoresTool_Handle(t *testing.T) {
	tool := NewComputeScoresTool(catalog.Default())
	result, err := tool.Handle(context.Background(), toolReq(map[string]interface{}{
		"answers_json": allAnswers("A"),
	}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected tool error: %s", getResultText(result))
	}

	var scores model.Scores
	if err := json.Unmarshal([]byte(getResultText(result)), &scores); err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if scores.OverallScore != 0 || scores.Category != model.CategoryNotReady || len(scores.RedFlags) != 9 {
		t.Errorf("scores = %+v", scores)
	}
}

func TestComputeScoresTool_BadAnswers(t *testing.T) {
	tool := NewComputeScoresTool(catalog.Default())
	for _, raw := range []string{"", "not json", `{"qid":1}`} {
		result, err := tool.Handle(context.Background(), toolReq(map[string]interface{}{"answers_json": raw}))
		if err != nil {
			t.Fatalf("Handle(%q) returned error: %v", raw, err)
		}
		if !isErrorResult(result) {
			t.Errorf("Handle(%q) succeeded, want tool error", raw)
		}
	}
}

func TestExtractTool_Handle(t *testing.T) {
	tool := NewExtractTool()
	result, _ := tool.Handle(context.Background(), toolReq(map[string]interface{}{
		"text": "prefix ```json\n{\"a\":1}\n``` suffix",
	}))
	var got extractResult
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Strategy != "fenced" || got.Object["a"] != 1.0 {
		t.Errorf("extract_structured = %+v", got)
	}

	result, _ = tool.Handle(context.Background(), toolReq(map[string]interface{}{"text": "no data here"}))
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Strategy != "failed" || got.Object != nil {
		t.Errorf("extract_structured on prose = %+v", got)
	}
}

func TestSynthesizeTool_Handle(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	tool := NewSynthesizeTool(catalog.Default(), now)

	result, err := tool.Handle(context.Background(), toolReq(map[string]interface{}{
		"answers_json":   allAnswers("D"),
		"child_name":     "Ava",
		"child_age":      12,
		"generator_text": `{"header_summary": "From the model"}`,
	}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected tool error: %s", getResultText(result))
	}

	var got struct {
		Scores   model.Scores   `json:"scores"`
		Strategy string         `json:"extract_strategy"`
		Report   map[string]any `json:"report"`
	}
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scores.OverallScore != 100 {
		t.Errorf("overall = %v, want 100", got.Scores.OverallScore)
	}
	if got.Report["header_summary"] != "From the model" {
		t.Errorf("header_summary = %v, want pass-through", got.Report["header_summary"])
	}
	follow, _ := got.Report["follow_up"].(map[string]any)
	if follow["next_assessment_date"] != "2025-04-15" {
		t.Errorf("follow_up = %v", got.Report["follow_up"])
	}
	if obs, _ := got.Report["observations"].([]any); len(obs) != 3 {
		t.Errorf("observations = %v, want 3 entries", got.Report["observations"])
	}
}

func TestSynthesizeTool_RequiresName(t *testing.T) {
	tool := NewSynthesizeTool(catalog.Default(), nil)
	result, _ := tool.Handle(context.Background(), toolReq(map[string]interface{}{
		"answers_json": allAnswers("B"),
	}))
	if !isErrorResult(result) {
		t.Fatal("Handle without child_name succeeded")
	}
}

func TestToolNames(t *testing.T) {
	if NewServer(nil) == nil {
		t.Fatal("NewServer returned nil")
	}
	cat := catalog.Default()
	got := []string{
		NewComputeScoresTool(cat).Definition().Name,
		NewExtractTool().Definition().Name,
		NewSynthesizeTool(cat, nil).Definition().Name,
	}
	want := []string{"compute_scores", "extract_structured", "synthesize_report"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d name = %q, want %q", i, got[i], want[i])
		}
	}
}
