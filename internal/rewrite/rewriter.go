// Package rewrite turns one chunk of text into an audience-adapted version
// whose factual anchors survive intact, escalating to strict instructions
// and finally to the original text when validation keeps failing.
package rewrite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ppiankov/contextcraft/internal/llm"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/profile"
	"github.com/ppiankov/contextcraft/internal/retry"
	"github.com/ppiankov/contextcraft/internal/validate"
)

// DefaultStrictRetries is the number of strict regenerations after a
// failed validation
const DefaultStrictRetries = 2

// Options configures a Rewriter
type Options struct {
	// Policy governs retries of transient generator errors
	Policy retry.Policy

	// StrictRetries caps strict-mode regenerations (0 = default)
	StrictRetries int

	// Model and MaxTokens are passed to the generator (empty = provider default)
	Model     string
	MaxTokens int

	Logger *zap.Logger
}

// Rewriter orchestrates generate, validate, escalate and fallback for a
// single chunk. It is safe for concurrent use; the semaphore bounds
// in-flight generator calls across all callers sharing it.
type Rewriter struct {
	gen           llm.Generator
	sem           *semaphore.Weighted
	profiles      *profile.Registry
	policy        retry.Policy
	strictRetries int
	model         string
	maxTokens     int
	logger        *zap.Logger
}

// New creates a Rewriter. A nil semaphore means one call at a time; a nil
// registry uses the built-in profiles.
func New(gen llm.Generator, sem *semaphore.Weighted, profiles *profile.Registry, opts Options) *Rewriter {
	if sem == nil {
		sem = semaphore.NewWeighted(1)
	}
	if profiles == nil {
		profiles = profile.NewRegistry("")
	}
	if opts.Policy.MaxAttempts == 0 && opts.Policy.BaseDelay == 0 && opts.Policy.MaxJitter == 0 {
		def := retry.DefaultPolicy()
		opts.Policy.MaxAttempts = def.MaxAttempts
		opts.Policy.BaseDelay = def.BaseDelay
		opts.Policy.MaxJitter = def.MaxJitter
	}
	if opts.Policy.Transient == nil {
		opts.Policy.Transient = llm.IsTransient
	}
	if opts.StrictRetries <= 0 {
		opts.StrictRetries = DefaultStrictRetries
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Rewriter{
		gen:           gen,
		sem:           sem,
		profiles:      profiles,
		policy:        opts.Policy,
		strictRetries: opts.StrictRetries,
		model:         opts.Model,
		maxTokens:     opts.MaxTokens,
		logger:        opts.Logger,
	}
	if r.policy.OnRetry == nil {
		r.policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			r.logger.Warn("generator throttled, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))
		}
	}
	return r
}

// RewriteOne rewrites original for the audience. The returned result
// either validates or carries the original text unchanged. The only error
// is a generator failure that outlived the retry policy.
func (r *Rewriter) RewriteOne(ctx context.Context, original string, profileID model.ProfileID, strength model.Strength) (*model.NodeRewriteResult, error) {
	if r.gen == nil {
		return nil, llm.ErrNoGenerator
	}

	prof, err := r.profiles.Get(profileID)
	if err != nil {
		return nil, err
	}

	firstReq := r.request(original, prof, strength, false)
	attempt, err := r.generate(ctx, firstReq, original, false)
	if err != nil {
		return nil, err
	}
	v := validate.Preservation(original, attempt.Rewritten)
	r.logger.Debug("rewrite attempt",
		zap.Int("attempt", 1),
		zap.Bool("strict", false),
		zap.Int("issues", len(v.Issues)))
	if !v.OK {
		// a cached copy would replay this failure on the next run
		llm.Forget(r.gen, firstReq)
	}

	warnings := []string{}
	for n := 1; n <= r.strictRetries && !v.OK; n++ {
		warnings = append(warnings, fmt.Sprintf("retry_%d: validation_failed", n))
		r.logger.Info("preservation check failed, escalating to strict mode",
			zap.Int("attempt", n+1),
			zap.Strings("issues", v.Messages()))

		attempt, err = r.generate(ctx, r.request(original, prof, strength, true), original, true)
		if err != nil {
			return nil, err
		}
		v = validate.Preservation(original, attempt.Rewritten)
		r.logger.Debug("rewrite attempt",
			zap.Int("attempt", n+1),
			zap.Bool("strict", true),
			zap.Int("issues", len(v.Issues)))
	}

	if !v.OK {
		r.logger.Warn("falling back to original text",
			zap.Strings("issues", v.Messages()))
		warnings = append(warnings, "fallback_to_original: preservation_validation_failed")
		attempt = model.RewriteAttempt{
			Rewritten: original,
			Reason:    reasonFallback,
			RuleID:    model.RuleConsistency,
		}
		v = validate.Preservation(original, original)
	}

	return &model.NodeRewriteResult{
		Rewritten:  attempt.Rewritten,
		Reason:     attempt.Reason,
		RuleID:     attempt.RuleID,
		Warnings:   warnings,
		Validation: v,
	}, nil
}

// Ready reports whether RewriteOne can run for profileID: the profile must
// load and a generator must be configured, checked in that order.
func (r *Rewriter) Ready(profileID model.ProfileID) error {
	if _, err := r.profiles.Get(profileID); err != nil {
		return err
	}
	if r.gen == nil {
		return llm.ErrNoGenerator
	}
	return nil
}

// Probe reports whether the provider is configured and reachable
func (r *Rewriter) Probe(ctx context.Context) error {
	if r.gen == nil {
		return llm.ErrNoGenerator
	}
	if !r.gen.IsAvailable(ctx) {
		return fmt.Errorf("%s provider unavailable", r.gen.Name())
	}
	return nil
}

// Generator returns the name of the underlying provider
func (r *Rewriter) Generator() string {
	if r.gen == nil {
		return ""
	}
	return r.gen.Name()
}

// request builds the generator call for one attempt. Strict attempts are
// identical to each other, so they must skip response caches.
func (r *Rewriter) request(original string, prof *profile.Profile, strength model.Strength, strict bool) llm.GenerateRequest {
	return llm.GenerateRequest{
		System:      SystemPrompt(strict),
		User:        UserPrompt(prof, strength, original),
		Model:       r.model,
		Temperature: strength.Temperature(),
		MaxTokens:   r.maxTokens,
		JSON:        true,
		Fresh:       strict,
	}
}

// generate performs one retry-wrapped generator call. A semaphore permit
// is held only while the provider call is in flight, never across a
// backoff sleep.
func (r *Rewriter) generate(ctx context.Context, req llm.GenerateRequest, original string, strict bool) (model.RewriteAttempt, error) {
	resp, err := retry.Do(ctx, r.policy, func(ctx context.Context) (*llm.GenerateResponse, error) {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer r.sem.Release(1)
		return r.gen.Generate(ctx, req)
	})
	if err != nil {
		return model.RewriteAttempt{}, err
	}

	return NormalizeAttempt(resp.Text, original, strict), nil
}
