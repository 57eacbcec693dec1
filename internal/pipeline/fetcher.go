package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/contextcraft/internal/retry"
	"github.com/ppiankov/contextcraft/internal/util"
)

const fetchMaxAttempts = 3

// fetchSleepFunc is the sleep used between fetch retries (injectable for tests)
var fetchSleepFunc = retry.SleepContext

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a source URL
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Fetcher fetches source documents from URLs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil disables robots.txt checks
	limiter    *util.Limiter       // nil disables per-host throttling
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via flag
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// WithRobots enables robots.txt checks sharing the fetcher's HTTP client
func (f *Fetcher) WithRobots() *Fetcher {
	f.robots = util.NewRobotsChecker(f.userAgent, f.httpClient)
	return f
}

// WithLimiter throttles requests per source host
func (f *Fetcher) WithLimiter(l *util.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// FetchResult contains the fetched document and metadata
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
}

// Fetch retrieves the document at rawURL in a single attempt
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/markdown,text/plain;q=0.9,text/html;q=0.8,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry honours robots.txt and the host limiter, then fetches
// with up to three attempts on 5xx, 429 and network errors.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL, crawlDelay); err != nil {
			return nil, err
		}
	}

	policy := retry.Policy{
		MaxAttempts: fetchMaxAttempts,
		BaseDelay:   time.Second,
		MaxJitter:   250 * time.Millisecond,
		Transient:   isRetryableFetchError,
		Sleep:       fetchSleepFunc,
	}
	return retry.Do(ctx, policy, func(ctx context.Context) (*FetchResult, error) {
		return f.Fetch(ctx, rawURL)
	})
}

// isRetryableFetchError reports whether a Fetch error is worth retrying:
// server errors, 429 and transport failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || code >= 500
	}

	return strings.HasPrefix(msg, "fetch: ")
}
