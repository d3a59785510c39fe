package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/seqsync/internal/value"
)

// GoldenDir is where RunWithGolden keeps its fixtures, relative to the
// package under test.
const GoldenDir = "testdata/golden"

// Snapshot renders the parts of a result that golden files compare, as
// canonical JSON. Error messages are left out; codes and positions are kept.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(value.Array, len(result.Trace))
	for i, entry := range result.Trace {
		obj := value.Object{
			"seq":     value.Int(entry.Seq),
			"batch":   value.String(entry.Batch),
			"updates": value.Int(int64(entry.Updates)),
			"length":  value.Int(int64(entry.Length)),
		}
		if entry.Failed() {
			obj["error"] = value.String(entry.Error)
			obj["position"] = value.Int(int64(entry.Position))
		} else {
			obj["sequence"] = value.Array(entry.Sequence)
			if len(entry.NewIDs) > 0 {
				obj["new_ids"] = value.Array(value.Strings(entry.NewIDs...))
			}
		}
		trace[i] = obj
	}

	snapshot := value.Object{
		"scenario_name": value.String(scenarioName),
		"trace":         trace,
		"final":         value.Array(result.Final),
		"fingerprint":   value.String(result.Fingerprint),
	}
	if result.Projection != nil {
		snapshot["projection"] = value.Array(result.Projection)
	}
	return value.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
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

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
