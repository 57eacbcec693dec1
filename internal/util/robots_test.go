package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = w.Write([]byte("User-agent: ContextCraft\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("ContextCraft/0.1 (+https://example.com)", nil)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/posts/launch.md")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /posts to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/notes.md")
	if allowed {
		t.Error("expected /private to be disallowed")
	}

	if robotsHits.Load() != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", robotsHits.Load())
	}
}

func TestRobotsChecker_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("ContextCraft/0.1", server.Client())
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("expected allow-all for missing robots.txt, got %v, %v", allowed, err)
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("ContextCraft/0.1", nil)
	if _, _, err := checker.CanFetch(context.Background(), "::bad"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"ContextCraft/0.1 (+https://x)": "ContextCraft",
		"curl":                          "curl",
		"":                              "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRobotsChecker_ConcurrentLookupsShareFetch(t *testing.T) {
	var robotsHits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			<-release
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
			return
		}
	}))
	defer server.Close()

	checker := NewRobotsChecker("ContextCraft/0.1", server.Client())

	done := make(chan bool, 4)
	for i := 0; i < 4; i++ {
		go func() {
			allowed, _, _ := checker.CanFetch(context.Background(), server.URL+"/doc")
			done <- allowed
		}()
	}

	// Let the lookups pile up behind the first request
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 4; i++ {
		if !<-done {
			t.Error("expected allowed")
		}
	}
	if robotsHits.Load() != 1 {
		t.Errorf("expected a single robots.txt fetch, got %d", robotsHits.Load())
	}
}
