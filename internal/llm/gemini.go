package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/contextcraft/internal/util"
)

// GeminiProvider implements the Generator interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: config.timeout(60 * time.Second),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be resolved
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.config.model(GenerateRequest{}, "gemini-2.5-flash"), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Gemini API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate runs one content completion
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.config.model(req, "gemini-2.5-flash")
	temperature := req.Temperature

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   int32(p.config.maxTokens(req)),
	}
	if req.JSON {
		contentConfig.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.User), contentConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("no content in Gemini response")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &GenerateResponse{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
	}, nil
}
