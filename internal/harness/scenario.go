package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one sequence update scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the snapshot the mirror starts from.
	Initial []any `yaml:"initial,omitempty"`

	// Identify is the object key used to collect new identifiers.
	// Empty disables identifier collection.
	Identify string `yaml:"identify,omitempty"`

	// Project is the object key a projected mirror is built from.
	// Empty disables the projection.
	Project string `yaml:"project,omitempty"`

	// Batches are lists of wire records, applied in order.
	Batches [][]map[string]any `yaml:"batches"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expect is the expected sequence (final_sequence, projection).
	Expect []any `yaml:"expect,omitempty"`

	// Count is the expected number (final_length, failures).
	Count int `yaml:"count,omitempty"`

	// IDs are the expected identifiers (new_ids), compared as a set.
	IDs []string `yaml:"ids,omitempty"`

	// Batch selects one batch by zero-based index (new_ids, batch_error).
	Batch *int `yaml:"batch,omitempty"`

	// Code is the expected error code (batch_error).
	Code string `yaml:"code,omitempty"`

	// Position is the expected failing position (batch_error, optional).
	Position *int `yaml:"position,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalSequence = "final_sequence"
	AssertFinalLength   = "final_length"
	AssertNewIDs        = "new_ids"
	AssertBatchError    = "batch_error"
	AssertProjection    = "projection"
	AssertFailures      = "failures"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
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

	if len(s.Batches) == 0 {
		return fmt.Errorf("batches list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, s); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Batch != nil && (*a.Batch < 0 || *a.Batch >= len(s.Batches)) {
		return fmt.Errorf("assertions[%d]: batch %d out of range (scenario has %d batches)",
			index, *a.Batch, len(s.Batches))
	}

	switch a.Type {
	case AssertFinalSequence:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_sequence", index)
		}
	case AssertFinalLength, AssertFailures:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertNewIDs:
		if s.Identify == "" {
			return fmt.Errorf("assertions[%d]: new_ids requires the scenario identify key", index)
		}
	case AssertBatchError:
		if a.Batch == nil {
			return fmt.Errorf("assertions[%d]: batch is required for batch_error", index)
		}
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for batch_error", index)
		}
	case AssertProjection:
		if s.Project == "" {
			return fmt.Errorf("assertions[%d]: projection requires the scenario project key", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for projection", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
