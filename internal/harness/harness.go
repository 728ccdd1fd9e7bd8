package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"cuelang.org/go/cue/cuecontext"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/roach88/dynsel/internal/cache"
	"github.com/roach88/dynsel/internal/compiler"
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
	"github.com/roach88/dynsel/internal/selection"
	"github.com/roach88/dynsel/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps against one engine with deterministic tokens.
type Harness struct {
	engine   *selection.Engine
	cache    *cache.Cache
	tokens   *testutil.SequenceGenerator
	counter  *testutil.CountingSynthesizer
	recorder *stepRecorder
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario gets a fresh registry and an in-memory cache.
//
// Execution flow:
// 1. Compile entity and predicate declarations and register them
// 2. Register scenario predicates
// 3. Execute steps with expect validation
// 4. Return result with pass/fail, per-step output and errors
func Run(scenario *Scenario) (*Result, error) {
	reg, err := buildRegistry(scenario)
	if err != nil {
		return nil, err
	}

	h := newHarness(reg, scenario)
	ctx := context.Background()

	result := NewResult()
	for i, step := range scenario.Steps {
		sr := h.executeStep(ctx, i, step)
		result.AddStep(sr)

		for _, err := range checkExpect(sr, step.Expect) {
			result.AddError(fmt.Sprintf("step %d: %v", i, err))
		}
	}

	return result, nil
}

func newHarness(reg *registry.Registry, scenario *Scenario) *Harness {
	c := cache.New(cache.NewMemoryStore(), scenario.Cache)
	tokens := testutil.NewSequenceGenerator("")
	rec := newStepRecorder()
	counter := testutil.NewCountingSynthesizer(&recordingSynthesizer{
		next: selection.NewSynthesizer(reg),
		rec:  rec,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	eng := selection.New(reg,
		selection.WithCache(c),
		selection.WithTokenGenerator(tokens),
		selection.WithSynthesizer(counter),
		selection.WithStrictEntities(scenario.Strict),
		selection.WithRecorder(rec),
		selection.WithLogger(logger),
	)

	return &Harness{
		engine:   eng,
		cache:    c,
		tokens:   tokens,
		counter:  counter,
		recorder: rec,
		logger:   logger,
	}
}

// buildRegistry compiles every entity file and registers scenario
// predicates.
func buildRegistry(scenario *Scenario) (*registry.Registry, error) {
	reg := registry.New()
	cctx := cuecontext.New()

	for _, path := range scenario.Entities {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read entity file: %w", err)
		}
		v := cctx.CompileBytes(src)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		specs, errs := compiler.CompileEntities(v)
		preds, predErrs := compiler.CompilePredicates(v)
		if all := append(errs, predErrs...); len(all) > 0 {
			return nil, fmt.Errorf("compile %s: %w", path, errors.Join(all...))
		}
		compiler.Apply(reg, specs)
		compiler.ApplyPredicates(reg, preds)
	}

	// Scenario predicates override file predicates with the same id.
	for id, flags := range scenario.Predicates {
		reg.RegisterPredicate(id, registry.AnyOf(flags...))
	}

	return reg, nil
}

// executeStep runs one Select call and collects what it did.
func (h *Harness) executeStep(ctx context.Context, index int, step Step) StepResult {
	if step.Cache != nil {
		h.cache.SetEnabled(*step.Cache)
	}

	h.tokens.Reset()
	h.counter.Reset()
	h.recorder.reset()

	sr := StepResult{Index: index}

	out, err := h.engine.SelectString(ctx, step.Query, step.Options)
	if err != nil {
		sr.Err = err
		sr.ErrorKind = classifyError(err)
		h.logger.Debug("step failed", "step", index, "error", err)
	} else {
		sr.Output = out
	}

	sr.Selections = h.recorder.selectionsCopy()
	sr.Tokens = h.tokens.Issued()
	sr.Synthesized = h.counter.Total()
	sr.CacheHits, sr.CacheMisses = h.recorder.lookups()

	n, err := h.cache.Len(ctx)
	if err != nil {
		h.logger.Warn("cache size unavailable", "error", err)
	}
	sr.CacheEntries = n

	return sr
}

// classifyError maps an engine error to a scenario error kind.
func classifyError(err error) string {
	var upe *registry.UnknownPredicateError
	var gqlErr *gqlerror.Error
	var gqlList gqlerror.List

	switch {
	case selection.IsMalformedSelection(err):
		return ErrorMalformed
	case selection.IsUnregisteredEntity(err):
		return ErrorUnregistered
	case errors.As(err, &upe):
		return ErrorPredicate
	case errors.As(err, &gqlErr), errors.As(err, &gqlList):
		return ErrorParse
	default:
		return "unknown"
	}
}

// recordingSynthesizer keeps the last selection text per entity.
type recordingSynthesizer struct {
	next selection.Synthesizer
	rec  *stepRecorder
}

func (s *recordingSynthesizer) Synthesize(entity string, relations ir.Relations, conds ir.Conditions) (string, error) {
	text, err := s.next.Synthesize(entity, relations, conds)
	if err == nil {
		s.rec.recordSelection(entity, text)
	}
	return text, err
}

// stepRecorder captures per-step cache lookups and synthesized text.
// It implements metrics.Recorder.
type stepRecorder struct {
	mu         sync.Mutex
	hits       int
	misses     int
	selections map[string]string
}

func newStepRecorder() *stepRecorder {
	return &stepRecorder{selections: make(map[string]string)}
}

func (r *stepRecorder) IncExpansion(string)                     {}
func (r *stepRecorder) ObserveExpansionSeconds(string, float64) {}
func (r *stepRecorder) IncSynthesis(string)                     {}

func (r *stepRecorder) IncCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *stepRecorder) recordSelection(entity, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[entity] = text
}

func (r *stepRecorder) lookups() (hits, misses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits, r.misses
}

func (r *stepRecorder) selectionsCopy() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.selections))
	for k, v := range r.selections {
		out[k] = v
	}
	return out
}

func (r *stepRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits, r.misses = 0, 0
	r.selections = make(map[string]string)
}
