package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cares/internal/config"
	"cares/internal/model"
)

// Gemini generates through the Gemini SDK
type Gemini struct {
	config config.AIConfig
}

// NewGemini creates a Gemini generator. The client is opened per call.
func NewGemini(cfg config.AIConfig) *Gemini {
	return &Gemini{config: cfg}
}

// Generate sends the example and the prompt with the system instruction
// set on the model
func (g *Gemini) Generate(ctx context.Context, prompt string) (*model.GeneratorOutput, error) {
	if !g.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout())
	defer cancel()

	opts := []option.ClientOption{option.WithAPIKey(g.config.APIKey)}
	if g.config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(g.config.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini client: %v", ErrUpstream, err)
	}
	defer client.Close()

	m := client.GenerativeModel(g.config.Model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemInstruction)}}
	m.SetTemperature(float32(g.config.Temperature))
	m.SetMaxOutputTokens(int32(g.config.MaxTokens))

	resp, err := m.GenerateContent(ctx, genai.Text(ExampleMessage), genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrUpstream, err)
	}

	var sb strings.Builder
	raw := map[string]any{"candidates": len(resp.Candidates)}
	if len(resp.Candidates) > 0 {
		c := resp.Candidates[0]
		raw["finish_reason"] = c.FinishReason.String()
		if c.Content != nil {
			for _, part := range c.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					sb.WriteString(string(text))
				}
			}
		}
	}
	if resp.UsageMetadata != nil {
		raw["usage"] = map[string]any{
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return &model.GeneratorOutput{
		Provider: config.ProviderGemini,
		Model:    g.config.Model,
		Text:     sb.String(),
		Raw:      raw,
	}, nil
}
