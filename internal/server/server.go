// Package server exposes document transformation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/llm"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/pipeline"
)

const defaultMaxBodyBytes = 2 << 20

// Transformer rewrites one in-memory document
type Transformer interface {
	Transform(ctx context.Context, req pipeline.TransformRequest) (*model.Report, error)
}

// Server serves the transform API
type Server struct {
	transformer Transformer
	config      model.ServerConfig
	logger      *zap.Logger
}

// New creates a server around a transformer
func New(t Transformer, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{transformer: t, config: cfg, logger: logger}
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/transform", s.handleTransform)
	return cors(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type transformBody struct {
	Markdown json.RawMessage `json:"markdown"`
	Profile  string          `json:"profile"`
	Strength string          `json:"strength"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var in transformBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}

	var markdown string
	if len(in.Markdown) == 0 || json.Unmarshal(in.Markdown, &markdown) != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "markdown must be a string"})
		return
	}

	profileID, err := model.ParseProfileID(in.Profile)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: model.ErrUnknownProfile.Error()})
		return
	}

	rep, err := s.transformer.Transform(r.Context(), pipeline.TransformRequest{
		Source:   []byte(markdown),
		Format:   document.FormatMarkdown,
		Profile:  profileID,
		Strength: model.ParseStrength(in.Strength),
		Debug:    s.config.Debug,
	})
	if err != nil {
		s.writeTransformError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) writeTransformError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownProfile):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: model.ErrUnknownProfile.Error()})
	case errors.Is(err, llm.ErrNoGenerator):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "missing_api_key",
			Message: "No LLM provider is configured. Set the provider API key and restart the server.",
		})
	case llm.IsTransient(err):
		s.logger.Warn("transform throttled by provider", zap.Error(err))
		body := errorBody{
			Error:   "rate_limited_or_quota",
			Message: "The LLM provider returned 429 (rate limit or quota). Check billing or retry shortly.",
		}
		if s.config.Debug {
			body.Message += " (" + err.Error() + ")"
		}
		writeJSON(w, http.StatusTooManyRequests, body)
	default:
		s.logger.Error("transform failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "transform failed", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
