package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cares/internal/config"
	"cares/internal/model"
)

// maxBodyBytes bounds how much of an upstream response is read
const maxBodyBytes = 4 << 20

// OpenRouter calls an OpenAI-compatible chat completions endpoint
type OpenRouter struct {
	config config.AIConfig
	client *http.Client
}

// NewOpenRouter creates a new OpenRouter generator
func NewOpenRouter(cfg config.AIConfig) *OpenRouter {
	return &OpenRouter{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Generate sends the system instruction, the example and the prompt
func (g *OpenRouter) Generate(ctx context.Context, prompt string) (*model.GeneratorOutput, error) {
	if !g.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: ExampleMessage},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.ChatEndpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "OpenRouter", Status: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	return &model.GeneratorOutput{
		Provider: config.ProviderOpenRouter,
		Model:    g.config.Model,
		Text:     messageContent(raw),
		Raw:      raw,
	}, nil
}

// messageContent reads choices[0].message.content; any other shape yields ""
func messageContent(raw map[string]any) string {
	choices, ok := raw["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	msg, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}
