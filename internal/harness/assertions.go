package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/dynsel/internal/selection"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string // Printed step output for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n%s\n", e.Output)
	}

	return buf.String()
}

// checkExpect evaluates every set expectation and returns all failures.
func checkExpect(sr StepResult, e Expect) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(assertError(sr, e.Error))
	if e.Document != "" {
		add(assertDocument(sr, e.Document))
	}
	for _, s := range e.Contains {
		add(assertContains(sr, s))
	}
	for _, s := range e.NotContains {
		add(assertNotContains(sr, s))
	}
	if e.Tokens != nil {
		add(assertCount("tokens", *e.Tokens, sr.Tokens, sr))
	}
	if e.Synthesized != nil {
		add(assertCount("synthesized", *e.Synthesized, sr.Synthesized, sr))
	}
	if e.CacheEntries != nil {
		add(assertCount("cache_entries", *e.CacheEntries, sr.CacheEntries, sr))
	}
	if e.Cache != "" {
		add(assertCache(sr, e.Cache))
	}

	return errs
}

// assertError checks the error kind. An empty want means the step must
// succeed.
func assertError(sr StepResult, want string) error {
	if want == sr.ErrorKind {
		return nil
	}

	actual := "no error"
	if sr.Err != nil {
		actual = fmt.Sprintf("%s error: %v", sr.ErrorKind, sr.Err)
	}
	expected := "no error"
	if want != "" {
		expected = want + " error"
	}

	return &AssertionError{
		Type:     "error",
		Expected: expected,
		Actual:   actual,
		Output:   sr.Output,
	}
}

// assertDocument compares the output to want after printing both through
// the same formatter.
func assertDocument(sr StepResult, want string) error {
	doc, err := selection.Parse(want)
	if err != nil {
		return &AssertionError{
			Type:     "document",
			Expected: "a parseable expected document",
			Actual:   err.Error(),
		}
	}

	expected := selection.Print(doc)
	if expected == sr.Output {
		return nil
	}

	return &AssertionError{
		Type:     "document",
		Expected: expected,
		Actual:   sr.Output,
	}
}

func assertContains(sr StepResult, s string) error {
	if strings.Contains(sr.Output, s) {
		return nil
	}
	return &AssertionError{
		Type:     "contains",
		Expected: fmt.Sprintf("output containing %q", s),
		Actual:   "not found",
		Output:   sr.Output,
	}
}

func assertNotContains(sr StepResult, s string) error {
	if !strings.Contains(sr.Output, s) {
		return nil
	}
	return &AssertionError{
		Type:     "not_contains",
		Expected: fmt.Sprintf("output without %q", s),
		Actual:   "found",
		Output:   sr.Output,
	}
}

func assertCount(kind string, want, got int, sr StepResult) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Output:   sr.Output,
	}
}

// assertCache checks the lookup outcome. A hit means at least one hit and
// no synthesis. A miss means no hit.
func assertCache(sr StepResult, want string) error {
	var ok bool
	switch want {
	case CacheHit:
		ok = sr.CacheHits > 0 && sr.Synthesized == 0
	case CacheMiss:
		ok = sr.CacheHits == 0
	}
	if ok {
		return nil
	}
	return &AssertionError{
		Type:     "cache",
		Expected: want,
		Actual:   fmt.Sprintf("%d hits, %d misses, %d syntheses", sr.CacheHits, sr.CacheMisses, sr.Synthesized),
		Output:   sr.Output,
	}
}
