package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	g, err := NewGenerator(ctx, Config{})
	if err != nil || g != nil {
		t.Fatalf("Expected nil generator for empty provider, got %v, %v", g, err)
	}

	if _, err := NewGenerator(ctx, Config{Provider: "bogus"}); err == nil {
		t.Error("Expected error for unknown provider")
	}

	g, err = NewGenerator(ctx, Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if g.Name() != "openai" {
		t.Errorf("Expected openai, got %s", g.Name())
	}

	g, err = NewGenerator(ctx, Config{Provider: "claude", APIKey: "k"})
	if err != nil || g.Name() != "anthropic" {
		t.Errorf("Expected anthropic provider, got %v, %v", g, err)
	}

	g, err = NewGenerator(ctx, Config{Provider: "ollama"})
	if err != nil || g.Name() != "ollama" {
		t.Errorf("Expected ollama provider, got %v, %v", g, err)
	}

	if _, err := NewGenerator(ctx, Config{Provider: "gemini"}); err == nil {
		t.Error("Expected error for gemini without API key")
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	c := Config{Provider: "openai"}
	c.ApplyEnv()
	if c.APIKey != "from-env" {
		t.Errorf("Expected key from env, got %q", c.APIKey)
	}

	c = Config{Provider: "openai", APIKey: "explicit"}
	c.ApplyEnv()
	if c.APIKey != "explicit" {
		t.Errorf("Explicit key should win, got %q", c.APIKey)
	}

	c = Config{Provider: "ollama"}
	c.ApplyEnv()
	if c.BaseURL != "http://ollama:11434" || c.MissingAPIKey() {
		t.Errorf("Unexpected ollama config: %+v", c)
	}

	if !(Config{Provider: "anthropic"}).MissingAPIKey() {
		t.Error("Expected anthropic without key to be missing")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &StatusError{Provider: "anthropic", StatusCode: 429, Message: "slow down"}, true},
		{"wrapped status 429", fmt.Errorf("call: %w", &StatusError{StatusCode: 429}), true},
		{"status 500", &StatusError{Provider: "ollama", StatusCode: 500, Message: "boom"}, false},
		{"quota message", errors.New("Rate limit reached"), true},
		{"plain", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
