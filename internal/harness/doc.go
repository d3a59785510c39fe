// Package harness runs sequence update scenarios and checks their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: timeline_basic
//	description: "Events arrive, one is redacted, the window is trimmed"
//	initial:
//	  - {id: e1, body: hello}
//	identify: id          # optional, key used to collect new identifiers
//	project: body         # optional, key for a projected mirror
//	batches:
//	  - - PushBack: {value: {id: e2, body: hi}}
//	    - Set: {index: 0, value: {id: e1, body: null}}
//	  - - Truncate: {length: 1}
//	assertions:
//	  - type: final_sequence
//	    expect: [{id: e1, body: null}]
//	  - type: new_ids
//	    ids: [e2]
//
// Each batch is a list of wire records. A record with zero or several
// variant keys decodes to a nil update, so the batch fails with
// UNRECOGNIZED_UPDATE at that position instead of aborting the scenario.
//
// # Assertion Types
//
//   - final_sequence: the mirrored sequence after every batch
//   - final_length: its length
//   - new_ids: identifiers introduced by one batch, or by all batches
//   - batch_error: a batch failed with the given error code
//   - projection: the projected mirror after every batch
//   - failures: number of discarded batches
//
// # Deterministic Testing
//
// Scenarios run through a mirror.Mirror with testutil.DeterministicClock and
// counting batch tokens ("batch-1", "batch-2", ...), so traces are identical
// across runs and can be compared with golden files.
//
// Every batch is also checked against the fold law: applying its updates one
// at a time must give the same sequence, or the same failure, as applying
// the batch.
package harness
