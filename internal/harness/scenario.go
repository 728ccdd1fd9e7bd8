package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dynsel/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entities lists paths to CUE entity files to compile and register.
	// Paths are relative to the scenario file location.
	Entities []string `yaml:"entities"`

	// Predicates defines custom predicates by id. Each is true when any of
	// the listed conditions is true.
	Predicates map[string][]string `yaml:"predicates,omitempty"`

	// Cache is the initial enable flag of the scenario's cache.
	Cache bool `yaml:"cache,omitempty"`

	// Strict makes unregistered entities fail the call.
	Strict bool `yaml:"strict,omitempty"`

	// Steps run in order against the same engine and cache.
	Steps []Step `yaml:"steps"`
}

// Step is one Select call.
type Step struct {
	// Query is the skeleton document text.
	Query string `yaml:"query"`

	// Options are the call options. Absent means empty.
	Options *ir.CallOptions `yaml:"options,omitempty"`

	// Cache, when set, toggles the cache before the call.
	Cache *bool `yaml:"cache,omitempty"`

	// Expect holds the checks for this step.
	Expect Expect `yaml:"expect"`
}

// Expect specifies expected step behavior. Zero values are not checked.
type Expect struct {
	Document     string   `yaml:"document,omitempty"`
	Contains     []string `yaml:"contains,omitempty"`
	NotContains  []string `yaml:"not_contains,omitempty"`
	Error        string   `yaml:"error,omitempty"`
	Tokens       *int     `yaml:"tokens,omitempty"`
	Cache        string   `yaml:"cache,omitempty"`
	CacheEntries *int     `yaml:"cache_entries,omitempty"`
	Synthesized  *int     `yaml:"synthesized,omitempty"`
}

// Expected error kinds.
const (
	ErrorMalformed    = "malformed"
	ErrorUnregistered = "unregistered"
	ErrorPredicate    = "predicate"
	ErrorParse        = "parse"
)

// Expected cache outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// LoadScenario reads and parses a scenario YAML file, resolving entity
// paths relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving entity paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve entity paths relative to base path BEFORE validation
	for i, p := range scenario.Entities {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Entities[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateEntityPaths(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Entities) == 0 {
		return fmt.Errorf("entities list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for id, flags := range s.Predicates {
		if len(flags) == 0 {
			return fmt.Errorf("predicates[%s]: at least one condition is required", id)
		}
	}

	for i, step := range s.Steps {
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if err := validateExpect(i, &step.Expect); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(index int, e *Expect) error {
	switch e.Error {
	case "", ErrorMalformed, ErrorUnregistered, ErrorPredicate, ErrorParse:
	default:
		return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, e.Error)
	}

	switch e.Cache {
	case "", CacheHit, CacheMiss:
	default:
		return fmt.Errorf("steps[%d].expect: cache must be %q or %q", index, CacheHit, CacheMiss)
	}

	if e.Error != "" && (e.Document != "" || len(e.Contains) > 0) {
		return fmt.Errorf("steps[%d].expect: error cannot be combined with document or contains", index)
	}

	return nil
}

func validateEntityPaths(s *Scenario) error {
	for _, p := range s.Entities {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("entity file not found: %s", p)
		}
	}
	return nil
}
