package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// robotsTTL bounds how long a host's robots.txt is trusted
const robotsTTL = 6 * time.Hour

// RobotsChecker decides whether a source URL may be fetched. Rules are
// cached per host, and concurrent lookups for one host share a request.
type RobotsChecker struct {
	rules      *gocache.Cache
	inflight   singleflight.Group
	httpClient *http.Client
	userAgent  string
	agent      string
}

// NewRobotsChecker creates a new robots.txt checker. A nil client gets a
// 10s-timeout default.
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:      gocache.New(robotsTTL, time.Hour),
		httpClient: client,
		userAgent:  userAgent,
		agent:      NormalizeUserAgent(userAgent),
	}
}

// CanFetch reports whether rawURL is allowed and the host's crawl delay.
// An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return false, 0, fmt.Errorf("parse URL: missing host in %q", rawURL)
	}

	data, err := r.rulesFor(ctx, parsed.Scheme, parsed.Host)
	if err != nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}

	return data.TestAgent(path, r.agent), delay, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	if cached, ok := r.rules.Get(host); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	v, err, _ := r.inflight.Do(host, func() (any, error) {
		data, err := r.fetchRules(ctx, fmt.Sprintf("%s://%s/robots.txt", scheme, host))
		if err != nil {
			return nil, err
		}
		r.rules.SetDefault(host, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*robotstxt.RobotsData), nil
}

func (r *RobotsChecker) fetchRules(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 4xx allows all, 5xx disallows all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// NormalizeUserAgent reduces a User-Agent header to its product token,
// which is what robots.txt groups are matched against
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(parts[0], "/")
	return product
}
