package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// OllamaProvider implements the Generator interface for local Ollama models
type OllamaProvider struct {
	rest   restClient
	config Config
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`

	// Only present once done
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	// Local models can be slow
	rest := newRESTClient("ollama", baseURL, config.timeout(120*time.Second), config)
	rest.errorDetail = func(body []byte) (string, string, bool) {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) != nil || e.Error == "" {
			return "", "", false
		}
		return "", e.Error, true
	}

	return &OllamaProvider{rest: rest, config: config}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that Ollama is running and, when a model is
// configured, that it has been pulled
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	var tags ollamaTags
	if err := p.rest.get(ctx, "/api/tags", &tags); err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (%s): %v\n", p.rest.baseURL, err)
		return false
	}

	if p.config.Model == "" {
		return true
	}
	for _, m := range tags.Models {
		if m.Name == p.config.Model || strings.TrimSuffix(m.Name, ":latest") == p.config.Model {
			return true
		}
	}
	fmt.Fprintf(os.Stderr, "Ollama model %q not found; run: ollama pull %s\n", p.config.Model, p.config.Model)
	return false
}

// Generate runs one non-streaming chat completion
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.config.model(req, "")
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	apiReq := ollamaRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  p.config.maxTokens(req),
		},
	}
	if req.JSON {
		apiReq.Format = "json"
	}

	var resp ollamaResponse
	if err := p.rest.post(ctx, "/api/chat", apiReq, &resp); err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	text := strings.TrimSpace(resp.Message.Content)

	// Some models report zero counts; estimate ~4 characters per token
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(req.System) + len(req.User) + len(text)) / 4
	}

	return &GenerateResponse{
		Text:       text,
		Model:      resp.Model,
		TokensUsed: tokensUsed,
	}, nil
}
