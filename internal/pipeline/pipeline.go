package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ppiankov/contextcraft/internal/cache"
	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/llm"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/profile"
	"github.com/ppiankov/contextcraft/internal/report"
	"github.com/ppiankov/contextcraft/internal/retry"
	"github.com/ppiankov/contextcraft/internal/rewrite"
	"github.com/ppiankov/contextcraft/internal/util"
)

// Pipeline orchestrates parse, rewrite and report for whole documents
type Pipeline struct {
	fetcher  *Fetcher
	rewriter *rewrite.Rewriter
	config   *model.Config
	logger   *zap.Logger
	cache    *cache.MemoryCache // nil when caching is disabled
}

// New assembles a pipeline from explicit parts
func New(cfg *model.Config, rw *rewrite.Rewriter, fetcher *Fetcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:  fetcher,
		rewriter: rw,
		config:   cfg,
		logger:   logger,
	}
}

// NewPipeline creates a pipeline with the configured generator and its
// middleware (logging, rate limiting, caching), one shared semaphore and
// a URL fetcher. A missing provider or API key is not an error here; it
// surfaces as llm.ErrNoGenerator on Transform.
func NewPipeline(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	llmConfig := llm.ConfigFromModel(cfg)
	llmConfig.ApplyEnv()

	var gen llm.Generator
	if llmConfig.MissingAPIKey() {
		logger.Warn("no API key for LLM provider", zap.String("provider", llmConfig.Provider), zap.String("env", llm.APIKeyEnv(llmConfig.Provider)))
	} else {
		g, err := llm.NewGenerator(ctx, llmConfig)
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		gen = g
	}

	return assemble(cfg, gen, llmConfig.Model, llmConfig.MaxTokens, logger), nil
}

// assemble wraps gen in the configured middleware and builds the rewriter
// and fetcher around it. A nil gen stays nil.
func assemble(cfg *model.Config, gen llm.Generator, modelName string, maxTokens int, logger *zap.Logger) *Pipeline {
	var (
		genCache *cache.MemoryCache
		cacheMW  llm.Middleware
	)
	if cfg.Cache.Enabled {
		genCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		cacheMW = llm.Cache(genCache, cfg.Cache.TTL)
	}
	gen = llm.Wrap(gen,
		cacheMW,
		llm.Logging(logger.Named("llm")),
		llm.RateLimit(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
	)

	concurrency := cfg.Rewrite.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	rw := rewrite.New(gen, semaphore.NewWeighted(int64(concurrency)), profile.NewRegistry(cfg.Profiles.Dir), rewrite.Options{
		Policy: retry.Policy{
			MaxAttempts: cfg.Rewrite.MaxAttempts,
			BaseDelay:   cfg.Rewrite.BaseDelay,
			MaxJitter:   cfg.Rewrite.MaxJitter,
		},
		StrictRetries: cfg.Rewrite.StrictRetries,
		Model:         modelName,
		MaxTokens:     maxTokens,
		Logger:        logger.Named("rewrite"),
	})

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).
		WithLimiter(util.NewLimiter(cfg.HTTP.HostRate, 1))
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots()
	}

	p := New(cfg, rw, fetcher, logger)
	p.cache = genCache
	return p
}

// Probe checks the configured provider without spending a rewrite
func (p *Pipeline) Probe(ctx context.Context) error {
	return p.rewriter.Probe(ctx)
}

// TransformRequest describes one document transformation
type TransformRequest struct {
	Source   []byte
	Format   document.Format
	Profile  model.ProfileID
	Strength model.Strength
	Debug    bool
}

// Transform rewrites every chunk of the document concurrently and builds
// the report. The first chunk error cancels the remaining chunks and is
// returned; no partial report is produced.
func (p *Pipeline) Transform(ctx context.Context, req TransformRequest) (*model.Report, error) {
	if err := p.rewriter.Ready(req.Profile); err != nil {
		return nil, err
	}

	doc, err := document.Parse(req.Source, req.Format)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	p.logger.Debug("document parsed",
		zap.String("format", string(doc.Format)),
		zap.Int("chunks", len(doc.Chunks)))

	results := make([]*model.NodeRewriteResult, len(doc.Chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range doc.Chunks {
		g.Go(func() error {
			res, err := p.rewriter.RewriteOne(gctx, chunk.Text, req.Profile, req.Strength)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.cache != nil {
		stats := p.cache.Stats()
		p.logger.Debug("generation cache",
			zap.Int64("hits", stats.Hits),
			zap.Int64("misses", stats.Misses),
			zap.Int("entries", stats.Entries))
	}

	var debug *model.ReportDebug
	if req.Debug {
		debug = &model.ReportDebug{
			Profile:     req.Profile,
			Strength:    req.Strength,
			Generator:   p.rewriter.Generator(),
			GeneratedAt: time.Now().UTC(),
		}
	}

	return report.Build(doc.Chunks, results, debug), nil
}

// TransformSource loads ref and transforms it
func (p *Pipeline) TransformSource(ctx context.Context, ref string, profileID model.ProfileID, strength model.Strength, format document.Format, debug bool) (*model.Report, error) {
	src, err := p.LoadSource(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	if format == "" || format == document.FormatAuto {
		format = src.Format
	}

	return p.Transform(ctx, TransformRequest{
		Source:   src.Body,
		Format:   format,
		Profile:  profileID,
		Strength: strength,
		Debug:    debug,
	})
}
