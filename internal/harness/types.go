package harness

import "github.com/roach88/seqsync/internal/value"

// TraceEntry records the outcome of one batch.
type TraceEntry struct {
	Seq      int64         `json:"seq"`
	Batch    string        `json:"batch"`
	Updates  int           `json:"updates"`
	Length   int           `json:"length"`
	Sequence []value.Value `json:"sequence,omitempty"`
	NewIDs   []string      `json:"new_ids,omitempty"`

	// Error is the diff error code when the batch was discarded.
	Error string `json:"error,omitempty"`

	// Position is the index of the failing update within the batch.
	Position int `json:"position,omitempty"`

	// Message is the full error text; not part of golden traces.
	Message string `json:"message,omitempty"`
}

// Failed reports whether the batch was discarded.
func (e TraceEntry) Failed() bool {
	return e.Error != ""
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held and no fold law check failed.
	Pass bool `json:"pass"`

	// Trace has one entry per batch, in scenario order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains assertion and law failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the mirrored sequence after all batches.
	Final []value.Value `json:"final"`

	// Projection is the projected sequence; nil when the scenario has no
	// project key.
	Projection []value.Value `json:"projection,omitempty"`

	// NewIDs is the union of identifiers introduced by all batches.
	NewIDs []string `json:"new_ids,omitempty"`

	// Fingerprint is value.Fingerprint(Final).
	Fingerprint string `json:"fingerprint"`

	// Failures counts discarded batches.
	Failures int `json:"failures"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
