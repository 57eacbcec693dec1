package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/contextcraft/internal/util"
)

// restClient is the JSON-over-HTTP transport shared by providers without
// an SDK
type restClient struct {
	provider string
	baseURL  string
	http     *http.Client
	headers  map[string]string

	// errorDetail extracts a provider error type and message from a non-200
	// body; ok is false when the body has no recognisable error
	errorDetail func(body []byte) (typ, msg string, ok bool)
}

func newRESTClient(provider, baseURL string, timeout time.Duration, config Config) restClient {
	return restClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		headers: map[string]string{},
	}
}

// post sends in as JSON to path and decodes a 200 response into out
func (c restClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// get fetches path and decodes a 200 response into out (nil discards it)
func (c restClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c restClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Message: string(respBody)}
		if c.errorDetail != nil {
			if typ, msg, ok := c.errorDetail(respBody); ok {
				statusErr.Type, statusErr.Message = typ, msg
			}
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
