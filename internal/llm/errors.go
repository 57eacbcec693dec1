package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/contextcraft/internal/retry"
)

// ErrNoGenerator is returned when no provider is configured
var ErrNoGenerator = errors.New("no LLM provider configured")

// StatusError is a non-2xx response from a REST provider
type StatusError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s API error (%d): %s - %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// IsTransient reports whether err is a rate/quota limit worth retrying.
// It understands the OpenAI SDK error types in addition to the generic
// status and message rules of retry.IsRateLimited.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	return retry.IsRateLimited(err)
}
