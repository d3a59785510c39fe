package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/seqsync/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, entry := range e.Trace {
		if entry.Failed() {
			fmt.Fprintf(&buf, "  [%d] %s seq=%d %s at %d\n", i, entry.Batch, entry.Seq, entry.Error, entry.Position)
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %s seq=%d length=%d\n", i, entry.Batch, entry.Seq, entry.Length)
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalSequence:
			err = assertSequence(AssertFinalSequence, result.Final, assertion, result.Trace)
		case AssertProjection:
			if result.Projection == nil {
				err = fmt.Errorf("assertion[%d]: projection requires a project key", i)
			} else {
				err = assertSequence(AssertProjection, result.Projection, assertion, result.Trace)
			}
		case AssertFinalLength:
			err = assertCount(AssertFinalLength, len(result.Final), assertion.Count, result.Trace)
		case AssertFailures:
			err = assertCount(AssertFailures, result.Failures, assertion.Count, result.Trace)
		case AssertNewIDs:
			err = assertNewIDs(result, assertion)
		case AssertBatchError:
			err = assertBatchError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertSequence compares actual with assertion.Expect by fingerprint, so
// object key order in the scenario file does not matter.
func assertSequence(kind string, actual []value.Value, assertion Assertion, trace []TraceEntry) error {
	expected, err := convertSequence(assertion.Expect)
	if err != nil {
		return fmt.Errorf("%s: expect: %w", kind, err)
	}

	if sameSequence(expected, actual) {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: render(expected),
		Actual:   render(actual),
		Trace:    trace,
	}
}

func assertCount(kind string, actual, expected int, trace []TraceEntry) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", expected),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    trace,
	}
}

// assertNewIDs compares identifiers as sets. With a batch index only that
// batch's identifiers count; otherwise the union over all batches.
func assertNewIDs(result *Result, assertion Assertion) error {
	actual := result.NewIDs
	label := "all batches"
	if assertion.Batch != nil {
		entry, err := traceEntry(result, *assertion.Batch)
		if err != nil {
			return err
		}
		actual = entry.NewIDs
		label = fmt.Sprintf("batch %d", *assertion.Batch)
	}

	expected := slices.Clone(assertion.IDs)
	slices.Sort(expected)
	expected = slices.Compact(expected)

	if slices.Equal(expected, actual) || (len(expected) == 0 && len(actual) == 0) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNewIDs,
		Expected: fmt.Sprintf("%v from %s", expected, label),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    result.Trace,
	}
}

func assertBatchError(result *Result, assertion Assertion) error {
	entry, err := traceEntry(result, *assertion.Batch)
	if err != nil {
		return err
	}

	if !entry.Failed() {
		return &AssertionError{
			Type:     AssertBatchError,
			Expected: fmt.Sprintf("batch %d fails with %s", *assertion.Batch, assertion.Code),
			Actual:   fmt.Sprintf("batch %d applied (length %d)", *assertion.Batch, entry.Length),
			Trace:    result.Trace,
		}
	}

	if entry.Error != assertion.Code {
		return &AssertionError{
			Type:     AssertBatchError,
			Expected: fmt.Sprintf("code %s", assertion.Code),
			Actual:   fmt.Sprintf("code %s: %s", entry.Error, entry.Message),
			Trace:    result.Trace,
		}
	}

	if assertion.Position != nil && entry.Position != *assertion.Position {
		return &AssertionError{
			Type:     AssertBatchError,
			Expected: fmt.Sprintf("failure at position %d", *assertion.Position),
			Actual:   fmt.Sprintf("failure at position %d", entry.Position),
			Trace:    result.Trace,
		}
	}
	return nil
}

func traceEntry(result *Result, batch int) (TraceEntry, error) {
	if batch < 0 || batch >= len(result.Trace) {
		return TraceEntry{}, fmt.Errorf("batch %d not in trace (%d entries)", batch, len(result.Trace))
	}
	return result.Trace[batch], nil
}

// render formats a sequence as canonical JSON for messages.
func render(seq []value.Value) string {
	data, err := value.MarshalCanonicalSequence(seq)
	if err != nil {
		return fmt.Sprintf("%v", seq)
	}
	return string(data)
}
