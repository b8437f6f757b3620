package config

import "time"

// AI providers
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOffline    = "offline"
)

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider    string  `yaml:"provider" json:"provider"`
	APIKey      string  `yaml:"api_key" json:"-"` // Never serialize
	BaseURL     string  `yaml:"base_url" json:"baseUrl"`
	Model       string  `yaml:"model" json:"model"`
	TimeoutMS   int     `yaml:"timeout_ms" json:"timeoutMs"`
	MaxTokens   int     `yaml:"max_tokens" json:"maxTokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider:    ProviderOpenRouter,
		BaseURL:     "https://openrouter.ai/api/v1",
		Model:       "tngtech/deepseek-r1t2-chimera:free",
		TimeoutMS:   60000, // free models can be slow
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns the request timeout
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ChatEndpoint returns the chat completions endpoint
func (c *AIConfig) ChatEndpoint() string {
	return c.BaseURL + "/chat/completions"
}

// applyAIEnv overrides AI settings from the environment. The API key is
// looked up per provider.
func applyAIEnv(c *AIConfig) {
	c.Provider = getEnvOrDefault("AI_PROVIDER", c.Provider)
	switch c.Provider {
	case ProviderGemini:
		if c.BaseURL == DefaultAIConfig().BaseURL {
			c.BaseURL = ""
		}
		if c.Model == DefaultAIConfig().Model {
			c.Model = "gemini-2.0-flash"
		}
		c.APIKey = getEnvOrDefault("GEMINI_API_KEY", c.APIKey)
	default:
		c.APIKey = getEnvOrDefault("OPENROUTER_API_KEY", c.APIKey)
	}
	c.BaseURL = getEnvOrDefault("AI_BASE_URL", c.BaseURL)
	c.Model = getEnvOrDefault("AI_MODEL", c.Model)
	c.TimeoutMS = getEnvInt("AI_TIMEOUT_MS", c.TimeoutMS)
	c.MaxTokens = getEnvInt("AI_MAX_TOKENS", c.MaxTokens)
	c.Temperature = getEnvFloat("AI_TEMPERATURE", c.Temperature)
}
