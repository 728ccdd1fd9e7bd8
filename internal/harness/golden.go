package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dynsel/internal/ir"
)

// Snapshot captures the synthesized selections of a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Steps        []StepResult
}

// toValue converts the snapshot to IR values for canonical JSON.
// Printed documents are left out so golden files only change when
// synthesis changes.
func (s *Snapshot) toValue() ir.Object {
	steps := make(ir.List, len(s.Steps))
	for i, step := range s.Steps {
		selections := ir.Object{}
		for name, text := range step.Selections {
			selections[name] = ir.String(text)
		}

		obj := ir.Object{
			"index":      ir.Int(step.Index),
			"selections": selections,
		}
		if step.ErrorKind != "" {
			obj["error"] = ir.String(step.ErrorKind)
		}
		steps[i] = obj
	}

	return ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"steps":         steps,
	}
}

// MarshalSnapshot returns the canonical JSON form of a result.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Steps: result.Steps}
	return ir.MarshalCanonical(snapshot.toValue())
}

// RunWithGolden executes a scenario and compares its synthesized
// selections against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
