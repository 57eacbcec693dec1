package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/contextcraft/internal/llm"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/pipeline"
)

type fakeTransformer struct {
	err  error
	got  pipeline.TransformRequest
	seen bool
}

func (f *fakeTransformer) Transform(ctx context.Context, req pipeline.TransformRequest) (*model.Report, error) {
	f.got = req
	f.seen = true
	if f.err != nil {
		return nil, f.err
	}
	rep := &model.Report{
		TransformedMarkdown: "Revenue grew 12% in 2023.",
		Changes:             []model.Change{},
		Validation:          model.ReportValidation{FidelityScore: 1, Warnings: []string{}},
	}
	if req.Debug {
		rep.Debug = &model.ReportDebug{Profile: req.Profile, Strength: req.Strength}
	}
	return rep, nil
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := New(&fakeTransformer{}, model.ServerConfig{}, nil)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTransform_Success(t *testing.T) {
	ft := &fakeTransformer{}
	s := New(ft, model.ServerConfig{}, nil)

	rec := do(t, s, http.MethodPost, "/transform", `{"markdown":"# Hi\n\nRevenue grew 12%.","profile":"startup","strength":"bogus"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.Validation.FidelityScore)
	assert.Nil(t, rep.Debug)

	assert.Equal(t, model.ProfileStartup, ft.got.Profile)
	assert.Equal(t, model.StrengthModerate, ft.got.Strength)
	assert.Equal(t, "# Hi\n\nRevenue grew 12%.", string(ft.got.Source))
}

func TestTransform_DebugFromConfig(t *testing.T) {
	s := New(&fakeTransformer{}, model.ServerConfig{Debug: true}, nil)

	rec := do(t, s, http.MethodPost, "/transform", `{"markdown":"text","profile":"general","strength":"aggressive"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.NotNil(t, rep.Debug)
	assert.Equal(t, model.StrengthAggressive, rep.Debug.Strength)
}

func TestTransform_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"markdown missing", `{"profile":"startup"}`, "markdown must be a string"},
		{"markdown number", `{"markdown":42,"profile":"startup"}`, "markdown must be a string"},
		{"markdown null", `{"markdown":null,"profile":"startup"}`, "markdown must be a string"},
		{"unknown profile", `{"markdown":"x","profile":"pirate"}`, "profile must be startup | enterprise | general"},
		{"invalid json", `{"markdown":`, "invalid json body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransformer{}
			s := New(ft, model.ServerConfig{}, nil)

			rec := do(t, s, http.MethodPost, "/transform", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec).Error)
			assert.False(t, ft.seen, "transformer must not be called")
		})
	}
}

func TestTransform_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"no generator", fmt.Errorf("rewrite: %w", llm.ErrNoGenerator), http.StatusInternalServerError, "missing_api_key"},
		{"unknown profile", fmt.Errorf("load: %w", model.ErrUnknownProfile), http.StatusBadRequest, "profile must be startup | enterprise | general"},
		{"throttled", fmt.Errorf("chunk 0: %w", &llm.StatusError{Provider: "openai", StatusCode: 429, Message: "slow down"}), http.StatusTooManyRequests, "rate_limited_or_quota"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "transform failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeTransformer{err: tt.err}, model.ServerConfig{}, nil)

			rec := do(t, s, http.MethodPost, "/transform", `{"markdown":"x","profile":"enterprise"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
		})
	}
}

func TestTransform_BodyLimit(t *testing.T) {
	s := New(&fakeTransformer{}, model.ServerConfig{MaxBodyBytes: 64}, nil)

	body := `{"markdown":"` + strings.Repeat("a", 200) + `","profile":"startup"}`
	rec := do(t, s, http.MethodPost, "/transform", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMethodsAndPreflight(t *testing.T) {
	s := New(&fakeTransformer{}, model.ServerConfig{}, nil)

	rec := do(t, s, http.MethodOptions, "/transform", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, s, http.MethodGet, "/transform", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, s, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(&fakeTransformer{}, model.ServerConfig{Addr: "127.0.0.1:0"}, nil)

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
