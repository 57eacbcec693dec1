package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newAnthropicTestProvider(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestAnthropicProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key test-key, got %s", r.Header.Get("x-api-key"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !strings.Contains(req.System, "JSON object") {
			t.Errorf("Expected JSON instruction in system prompt, got %q", req.System)
		}
		if req.Model != "claude-3-5-sonnet-20241022" {
			t.Errorf("Expected default model, got %s", req.Model)
		}

		resp := anthropicResponse{
			Model: "claude-3-5-sonnet-20241022",
			Content: []anthropicContent{
				{Type: "text", Text: `{"rewritten":"Hi.","reason":"r","rule_id":"TONE"}`},
			},
			Usage: anthropicUsage{InputTokens: 40, OutputTokens: 10},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)

	resp, err := provider.Generate(context.Background(), GenerateRequest{System: "sys", User: "Hi.", JSON: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != `{"rewritten":"Hi.","reason":"r","rule_id":"TONE"}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("Expected 50 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "Bad input"}}`))
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)

	_, err := provider.Generate(context.Background(), GenerateRequest{User: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Type != "invalid_request_error" {
		t.Errorf("Unexpected status error: %+v", statusErr)
	}
	if IsTransient(err) {
		t.Errorf("400 should not be transient: %v", err)
	}
}

func TestAnthropicProvider_Generate_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "Rate limit exceeded"}}`))
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)

	_, err := provider.Generate(context.Background(), GenerateRequest{User: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("429 should be transient: %v", err)
	}
}

func TestAnthropicProvider_Generate_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)

	_, err := provider.Generate(context.Background(), GenerateRequest{User: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/models" {
			t.Errorf("Expected GET /v1/models, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"claude-3-5-haiku-20241022"}]}`))
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}
}

func TestAnthropicProvider_Generate_NoTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"m","content":[{"type":"tool_use"}]}`))
	}))
	defer server.Close()

	provider := newAnthropicTestProvider(t, server.URL)
	if _, err := provider.Generate(context.Background(), GenerateRequest{User: "x"}); err == nil {
		t.Fatal("Expected error for response without text blocks")
	}
}
