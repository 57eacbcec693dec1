package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// NewGenerator creates a new LLM provider based on configuration
func NewGenerator(ctx context.Context, config Config) (Generator, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(ctx, config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// APIKeyEnv returns the environment variable holding the provider's key,
// or "" when the provider needs none.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini", "google":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// ApplyEnv fills the API key and Ollama base URL from the environment
// when the config does not already carry them.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		if env := APIKeyEnv(c.Provider); env != "" {
			c.APIKey = os.Getenv(env)
		}
	}
	if strings.EqualFold(c.Provider, "ollama") && c.BaseURL == "" {
		c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

// MissingAPIKey reports whether the provider requires a key that is not set
func (c Config) MissingAPIKey() bool {
	return APIKeyEnv(c.Provider) != "" && c.APIKey == ""
}
