package harness

// StepResult records what one step produced.
type StepResult struct {
	// Index is the zero-based step position.
	Index int `json:"index"`

	// Output is the printed document. Empty when the step failed.
	Output string `json:"output,omitempty"`

	// Err is the error returned by the step, if any.
	Err error `json:"-"`

	// ErrorKind classifies Err: malformed, unregistered, predicate or parse.
	ErrorKind string `json:"error,omitempty"`

	// Selections maps each synthesized entity to its selection text.
	// Empty on a cache hit.
	Selections map[string]string `json:"selections"`

	// Tokens is the number of placeholder tokens issued.
	Tokens int `json:"tokens"`

	// Synthesized is the number of synthesizer calls.
	Synthesized int `json:"synthesized"`

	// CacheHits and CacheMisses count cache lookups.
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`

	// CacheEntries is the number of cache entries after the step.
	CacheEntries int `json:"cache_entries"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step result.
func (r *Result) AddStep(step StepResult) {
	r.Steps = append(r.Steps, step)
}
