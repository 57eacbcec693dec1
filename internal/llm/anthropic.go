package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	anthropicDefaultModel = "claude-3-5-sonnet-20241022"
	anthropicVersion      = "2023-06-01"
)

// AnthropicProvider implements the Generator interface for Anthropic Claude
// models over the Messages API
type AnthropicProvider struct {
	rest   restClient
	config Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	rest := newRESTClient("anthropic", baseURL, config.timeout(60*time.Second), config)
	rest.headers["x-api-key"] = config.APIKey
	rest.headers["anthropic-version"] = anthropicVersion
	rest.errorDetail = func(body []byte) (string, string, bool) {
		var e struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
			return "", "", false
		}
		return e.Error.Type, e.Error.Message, true
	}

	return &AnthropicProvider{rest: rest, config: config}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable checks the key by listing models, which costs no tokens
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	if err := p.rest.get(ctx, "/v1/models", nil); err != nil {
		fmt.Fprintf(os.Stderr, "Anthropic API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate runs one completion. The Messages API has no JSON mode, so a
// JSON request only tightens the system prompt.
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	system := req.System
	if req.JSON {
		system += "\nRespond with a single JSON object and nothing else."
	}

	var resp anthropicResponse
	err := p.rest.post(ctx, "/v1/messages", anthropicRequest{
		Model:       p.config.model(req, anthropicDefaultModel),
		MaxTokens:   p.config.maxTokens(req),
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: req.User}},
		Temperature: req.Temperature,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text content in Anthropic response")
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
