package llm

import (
	"context"
	"time"

	"github.com/ppiankov/contextcraft/internal/model"
)

// Generator defines the interface for text-generation providers
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate completes a system + user instruction pair and returns the raw text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one completion
type GenerateRequest struct {
	// System is the instruction set (audience, constraints, output format)
	System string

	// User carries the text to rewrite and its context
	User string

	// Model overrides the configured model when set
	Model string

	// Temperature controls creativity; derived from rewrite strength
	Temperature float32

	// MaxTokens limits the response length (0 = provider config)
	MaxTokens int

	// JSON asks the provider for a JSON object response when supported
	JSON bool

	// Fresh bypasses response caches; the caller needs a new sample
	Fresh bool
}

// GenerateResponse contains the provider's raw completion
type GenerateResponse struct {
	// Text is the raw completion, expected to hold a JSON object
	Text string

	// Model is the model that produced the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   60,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts the application config to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		MaxTokens:  cfg.LLM.MaxTokens,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout <= 0 {
		return fallback
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(req GenerateRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}

func (c Config) model(req GenerateRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
