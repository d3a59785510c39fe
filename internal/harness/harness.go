package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/mirror"
	"github.com/roach88/seqsync/internal/testutil"
	"github.com/roach88/seqsync/internal/value"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Convert the initial snapshot and decode every batch
//  2. Feed the batches through a mirror with deterministic clock and tokens
//  3. Record one trace entry per batch and check the fold law
//  4. Evaluate assertions
//
// An error is returned only when the scenario itself is malformed (bad
// element values or wire payloads). Failing batches are part of the result.
func Run(scenario *Scenario) (*Result, error) {
	initial, err := convertSequence(scenario.Initial)
	if err != nil {
		return nil, fmt.Errorf("initial: %w", err)
	}

	batches := make([][]diff.Update[value.Value], len(scenario.Batches))
	for i, records := range scenario.Batches {
		batches[i], err = decodeRecords(records)
		if err != nil {
			return nil, fmt.Errorf("batches[%d]: %w", i, err)
		}
	}

	result := NewResult()
	rec := &recorder{batches: batches, result: result, prev: initial, allIDs: diff.IDSet{}}

	opts := []mirror.Option[value.Value]{
		mirror.WithLogger[value.Value](slog.New(slog.NewTextHandler(io.Discard, nil))),
		mirror.WithClock[value.Value](testutil.NewDeterministicClock()),
		mirror.WithTokenGenerator[value.Value](testutil.NewCountingTokenGenerator("batch")),
		mirror.WithListener[value.Value](rec),
	}
	if scenario.Identify != "" {
		opts = append(opts, mirror.WithIdentify(value.Field(scenario.Identify)))
	}

	var projection *mirror.Projection[value.Value, value.Value]
	if scenario.Project != "" {
		projection = mirror.NewProjection(initial, value.Project(scenario.Project))
		opts = append(opts, mirror.WithListener[value.Value](projection))
	}

	m := mirror.New(initial, opts...)
	for _, b := range batches {
		m.Enqueue(b)
	}
	m.Stop()
	if err := m.Run(context.Background()); err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}

	result.Final = m.Snapshot()
	result.Failures = int(m.Failures())
	result.NewIDs = rec.allIDs.Sorted()
	if result.Fingerprint, err = value.Fingerprint(result.Final); err != nil {
		return nil, err
	}
	if projection != nil {
		if err := projection.Err(); err != nil {
			result.AddError(fmt.Sprintf("projection diverged: %v", err))
		}
		result.Projection = projection.Snapshot()
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// recorder builds the trace and checks the fold law for each batch.
// Called only from the mirror's Run goroutine.
type recorder struct {
	batches [][]diff.Update[value.Value]
	result  *Result

	prev   []value.Value // state before the next batch
	next   int           // index of the next batch
	allIDs diff.IDSet
}

func (r *recorder) OnChange(c mirror.Change[value.Value]) {
	i := r.next
	r.next++

	if msg := checkFoldLaw(r.prev, c.Updates, c.Sequence, nil); msg != "" {
		r.result.AddError(fmt.Sprintf("batches[%d]: %s", i, msg))
	}

	r.allIDs.Union(c.NewIDs)
	r.result.Trace = append(r.result.Trace, TraceEntry{
		Seq:      c.Seq,
		Batch:    c.Token,
		Updates:  len(c.Updates),
		Length:   len(c.Sequence),
		Sequence: c.Sequence,
		NewIDs:   c.NewIDs.Sorted(),
	})
	r.prev = c.Sequence
}

func (r *recorder) OnFailure(f mirror.Failure) {
	i := r.next
	r.next++

	updates := r.batches[i]
	if msg := checkFoldLaw(r.prev, updates, nil, f.Err); msg != "" {
		r.result.AddError(fmt.Sprintf("batches[%d]: %s", i, msg))
	}

	r.result.Trace = append(r.result.Trace, TraceEntry{
		Seq:      f.Seq,
		Batch:    f.Token,
		Updates:  len(updates),
		Length:   len(r.prev),
		Error:    string(diff.CodeOf(f.Err)),
		Position: positionOf(f.Err),
		Message:  f.Err.Error(),
	})
}

// checkFoldLaw applies updates one at a time to prev and compares the
// outcome with the batch result: the same sequence on success, or a failure
// with the same code at the same position.
func checkFoldLaw(prev []value.Value, updates []diff.Update[value.Value], batchSeq []value.Value, batchErr error) string {
	seq := prev
	for pos, u := range updates {
		var err error
		seq, err = diff.Apply(seq, u)
		if err == nil {
			continue
		}
		if batchErr == nil {
			return fmt.Sprintf("fold law violated: update %d fails alone (%v) but the batch succeeded", pos, err)
		}
		if diff.CodeOf(err) != diff.CodeOf(batchErr) || positionOf(batchErr) != pos {
			return fmt.Sprintf("fold law violated: update %d fails with %s, batch failed with %s at %d",
				pos, diff.CodeOf(err), diff.CodeOf(batchErr), positionOf(batchErr))
		}
		return ""
	}

	if batchErr != nil {
		return fmt.Sprintf("fold law violated: batch failed (%v) but every update applies alone", batchErr)
	}
	if !sameSequence(seq, batchSeq) {
		return "fold law violated: one-at-a-time result differs from batch result"
	}
	return ""
}

// decodeRecords decodes wire records into updates. A record that names no
// variant, or several, becomes a nil update so the batch fails with
// UNRECOGNIZED_UPDATE when applied.
func decodeRecords(records []map[string]any) ([]diff.Update[value.Value], error) {
	updates := make([]diff.Update[value.Value], len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		u, err := diff.DecodeUpdate(data, value.Decode)
		switch {
		case diff.IsUnrecognizedUpdate(err):
			updates[i] = nil
		case err != nil:
			return nil, fmt.Errorf("record %d: %w", i, err)
		default:
			updates[i] = u
		}
	}
	return updates, nil
}

// convertSequence converts YAML-decoded elements to values.
func convertSequence(items []any) ([]value.Value, error) {
	seq := make([]value.Value, len(items))
	for i, item := range items {
		v, err := value.FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		seq[i] = v
	}
	return seq, nil
}

func positionOf(err error) int {
	var de *diff.Error
	if errors.As(err, &de) {
		return de.Position
	}
	return -1
}

func sameSequence(a, b []value.Value) bool {
	fa, errA := value.Fingerprint(a)
	fb, errB := value.Fingerprint(b)
	return errA == nil && errB == nil && fa == fb
}
