package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/contextcraft/internal/cache"
	"github.com/ppiankov/contextcraft/internal/util"
)

// Middleware decorates a Generator
type Middleware func(Generator) Generator

// Wrap applies middlewares so the first one listed is the outermost
func Wrap(inner Generator, mws ...Middleware) Generator {
	if inner == nil {
		return nil
	}
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			inner = mws[i](inner)
		}
	}
	return inner
}

// generatorFunc adapts a function into a Generator that keeps the inner
// provider's identity.
type generatorFunc struct {
	inner    Generator
	generate func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

func (g generatorFunc) Name() string { return g.inner.Name() }

func (g generatorFunc) IsAvailable(ctx context.Context) bool { return g.inner.IsAvailable(ctx) }

func (g generatorFunc) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return g.generate(ctx, req)
}

func (g generatorFunc) Forget(req GenerateRequest) { Forget(g.inner, req) }

// Logging logs each call with its latency
func Logging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Generator) Generator {
		return generatorFunc{
			inner: next,
			generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
				start := time.Now()
				resp, err := next.Generate(ctx, req)
				fields := []zap.Field{
					zap.String("provider", next.Name()),
					zap.String("model", req.Model),
					zap.Float32("temperature", req.Temperature),
					zap.Duration("latency", time.Since(start)),
				}
				if err != nil {
					logger.Warn("llm call failed", append(fields, zap.Error(err))...)
					return nil, err
				}
				logger.Debug("llm call", append(fields, zap.Int("tokens", resp.TokensUsed))...)
				return resp, nil
			},
		}
	}
}

// RateLimit throttles calls per provider/model with a token bucket.
// A non-positive rps disables the limiter.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return nil
	}
	limiter := util.NewLimiter(rps, burst)
	return func(next Generator) Generator {
		return generatorFunc{
			inner: next,
			generate: func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
				if err := limiter.Wait(ctx, next.Name()+"/"+req.Model); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return nil, ctxErr
					}
					return nil, fmt.Errorf("throttle wait: %w", err)
				}
				return next.Generate(ctx, req)
			},
		}
	}
}

// Forgetter evicts a cached response
type Forgetter interface {
	Forget(req GenerateRequest)
}

// Forget evicts the cached response for req if g, or a generator it wraps,
// caches responses. It is a no-op otherwise.
func Forget(g Generator, req GenerateRequest) {
	if f, ok := g.(Forgetter); ok {
		f.Forget(req)
	}
}

// Cache memoises successful responses. Errors are never cached, and Fresh
// requests neither read nor populate the cache.
func Cache(c cache.Cache, ttl time.Duration) Middleware {
	if c == nil {
		return nil
	}
	return func(next Generator) Generator {
		return &cachingGenerator{next: next, store: c, ttl: ttl}
	}
}

type cachingGenerator struct {
	next  Generator
	store cache.Cache
	ttl   time.Duration
}

func (g *cachingGenerator) Name() string { return g.next.Name() }

func (g *cachingGenerator) IsAvailable(ctx context.Context) bool { return g.next.IsAvailable(ctx) }

func (g *cachingGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Fresh {
		return g.next.Generate(ctx, req)
	}

	key := g.key(req)
	if data, ok := g.store.Get(key); ok {
		var cached GenerateResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		_ = g.store.Delete(key)
	}

	resp, err := g.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		_ = g.store.Set(key, data, g.ttl)
	}
	return resp, nil
}

func (g *cachingGenerator) Forget(req GenerateRequest) {
	_ = g.store.Delete(g.key(req))
	Forget(g.next, req)
}

func (g *cachingGenerator) key(req GenerateRequest) string {
	return cache.Key(
		g.next.Name(),
		req.Model,
		fmt.Sprintf("%.2f", req.Temperature),
		fmt.Sprintf("%t", req.JSON),
		req.System,
		req.User,
	)
}
