package selection

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/metrics"
	"github.com/roach88/dynsel/internal/registry"
)

// Engine expands skeleton documents against a registry.
//
// The registry is read on every call and must not change while calls
// are running. Register everything first, then expand.
type Engine struct {
	reg      *registry.Registry
	synth    Synthesizer
	tokens   TokenGenerator
	cache    *cache.Cache
	logger   *slog.Logger
	recorder metrics.Recorder
	strict   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables memoization through c. Whether c is consulted is
// decided per call by c.Enabled(); a disabled cache is cleared on every
// call.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTokenGenerator sets the placeholder token source.
// Default: UUIDGenerator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// WithSynthesizer replaces the registry-backed synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(e *Engine) {
		e.synth = s
	}
}

// WithStrictEntities makes unregistered entities fail the call.
// By default an unknown entity expands to an empty selection and an
// unknown nested type to an empty body, keeping its siblings.
func WithStrictEntities(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithRecorder sets the metrics recorder. Default: metrics.Default().
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New creates an Engine over reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		synth:    NewSynthesizer(reg),
		tokens:   UUIDGenerator{},
		logger:   slog.Default(),
		recorder: metrics.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Select expands every entity leaf of doc and returns a new document.
// doc is not modified. A nil opts is the same as empty options.
//
// Errors from parsing or printing doc itself are returned unchanged.
// A synthesized selection that fails to re-parse returns a
// *MalformedSelectionError. Cache problems are logged and never fail
// the call.
func (e *Engine) Select(ctx context.Context, doc *ast.QueryDocument, opts *ir.CallOptions) (*ast.QueryDocument, error) {
	if doc == nil {
		return nil, errors.New("select: nil document")
	}

	done := metrics.TimeExpansion(e.recorder)

	working, text, err := clone(doc)
	if err != nil {
		done(metrics.OutcomeFailed)
		return nil, err
	}

	fp, useCache := e.prepareCache(ctx, text, opts)
	if useCache {
		if out, ok := e.lookup(ctx, fp); ok {
			done(metrics.OutcomeCached)
			return out, nil
		}
	}

	placeholders := Scan(working, e.reg, e.tokens)
	e.logger.Debug("placeholders assigned",
		"count", placeholders.Len(),
	)

	out, err := Substitute(working, placeholders, func(entity string) (string, error) {
		return e.expand(entity, opts)
	})
	if err != nil {
		done(metrics.OutcomeFailed)
		return nil, err
	}

	if useCache {
		if err := e.cache.Put(ctx, fp, Print(out)); err != nil {
			e.logger.Warn("cache store failed",
				"fingerprint", fp.Digest(),
				"error", err,
			)
		}
	}

	done(metrics.OutcomeExpanded)
	return out, nil
}

// SelectString parses text, expands it, and prints the result.
func (e *Engine) SelectString(ctx context.Context, text string, opts *ir.CallOptions) (string, error) {
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}
	out, err := e.Select(ctx, doc, opts)
	if err != nil {
		return "", err
	}
	return Print(out), nil
}

// Fingerprint returns the cache key Select would use for doc and opts.
func (e *Engine) Fingerprint(doc *ast.QueryDocument, opts *ir.CallOptions) (cache.Fingerprint, error) {
	_, text, err := clone(doc)
	if err != nil {
		return cache.Fingerprint{}, err
	}
	return cache.ComputeFingerprint(text, opts, e.reg.Snapshot())
}

// prepareCache clears a disabled cache, or computes the fingerprint for
// an enabled one. It reports whether the cache should be used.
func (e *Engine) prepareCache(ctx context.Context, text string, opts *ir.CallOptions) (cache.Fingerprint, bool) {
	if e.cache == nil {
		return cache.Fingerprint{}, false
	}

	if !e.cache.Enabled() {
		if err := e.cache.Clear(ctx); err != nil {
			e.logger.Warn("cache clear failed", "error", err)
		} else {
			e.logger.Debug("cache disabled, slot cleared")
		}
		return cache.Fingerprint{}, false
	}

	fp, err := cache.ComputeFingerprint(text, opts, e.reg.Snapshot())
	if err != nil {
		e.logger.Warn("fingerprint failed, bypassing cache", "error", err)
		return cache.Fingerprint{}, false
	}
	return fp, true
}

// lookup returns the cached document for fp. Any failure is a miss.
func (e *Engine) lookup(ctx context.Context, fp cache.Fingerprint) (*ast.QueryDocument, bool) {
	text, ok, err := e.cache.Get(ctx, fp)
	if err != nil {
		e.logger.Warn("cache lookup failed",
			"fingerprint", fp.Digest(),
			"error", err,
		)
	}
	if !ok {
		e.recorder.IncCacheLookup(false)
		e.logger.Debug("cache miss", "fingerprint", fp.Digest())
		return nil, false
	}

	out, err := Parse(text)
	if err != nil {
		e.recorder.IncCacheLookup(false)
		e.logger.Warn("cached document does not parse",
			"fingerprint", fp.Digest(),
			"error", err,
		)
		return nil, false
	}

	e.recorder.IncCacheLookup(true)
	e.logger.Debug("cache hit", "fingerprint", fp.Digest())
	return out, true
}

// expand merges options for entity and synthesizes its selection,
// applying the unregistered-entity policy.
func (e *Engine) expand(entity string, opts *ir.CallOptions) (string, error) {
	desc, _ := e.reg.LookupType(entity)
	merged := opts.Resolve(entity, desc.Default)

	text, err := e.synth.Synthesize(entity, merged.Relations, merged.Conditions)
	if err != nil {
		var ue *UnregisteredEntityError
		if e.strict || !errors.As(err, &ue) {
			return "", err
		}
		// An unknown nested type leaves an empty "name { }" body, which
		// fails the final re-parse.
		e.logger.Debug("unregistered entity degrades to partial selection",
			"entity", entity,
			"type_id", ue.TypeID,
		)
		text = ue.Partial
	}

	e.recorder.IncSynthesis(entity)
	return text, nil
}
