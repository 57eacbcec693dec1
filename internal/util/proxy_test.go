package util

import (
	"net/http"
	"testing"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy", "NO_PROXY", "no_proxy", "REQUEST_METHOD"} {
		t.Setenv(k, "")
	}
}

func TestNewProxyFunc(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("http://http-proxy:8080", "http://https-proxy:8443", "internal.example.com")

	tests := []struct {
		name     string
		url      string
		wantHost string // empty means direct
	}{
		{"https uses https proxy", "https://api.openai.com/v1", "https-proxy:8443"},
		{"http uses http proxy", "http://example.com/post.md", "http-proxy:8080"},
		{"no_proxy host is direct", "https://internal.example.com/doc", ""},
		{"localhost is direct", "http://localhost:11434/api/chat", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			u, err := proxy(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantHost == "" {
				if u != nil {
					t.Errorf("expected direct connection, got %v", u)
				}
				return
			}
			if u == nil || u.Host != tt.wantHost {
				t.Errorf("expected proxy %s, got %v", tt.wantHost, u)
			}
		})
	}
}

func TestNewProxyFunc_EnvironmentFallback(t *testing.T) {
	clearProxyEnv(t)
	t.Setenv("HTTPS_PROXY", "http://env-proxy:3128")

	proxy := NewProxyFunc("", "", "")
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	u, err := proxy(req)
	if err != nil || u == nil || u.Host != "env-proxy:3128" {
		t.Errorf("expected environment proxy, got %v, %v", u, err)
	}
}
