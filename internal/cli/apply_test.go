package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqsync/internal/value"
)

func runCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--format", format))
	err := cmd.Execute()
	return buf.String(), err
}

func TestApplyCommand_Text(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.json", `["a", "b"]`)
	updates := writeFile(t, dir, "updates.json", `[
		{"PushBack": {"value": "c"}},
		{"Remove": {"index": 0}}
	]`)

	out, err := runCommand(t, "text", "apply", snapshot, updates)
	require.NoError(t, err)

	assert.Contains(t, out, `["b","c"]`)
	assert.Contains(t, out, "length: 2")
	assert.Contains(t, out, "fingerprint: "+value.MustFingerprint(value.Strings("b", "c")))
}

func TestApplyCommand_DiscardsFailingBatch(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.json", `[]`)
	b1 := writeFile(t, dir, "b1.json", `[{"PushBack": {"value": {"id": "r1"}}}]`)
	b2 := writeFile(t, dir, "b2.json", `[
		{"PushBack": {"value": {"id": "r2"}}},
		{"Set": {"index": 5, "value": {"id": "r3"}}}
	]`)
	b3 := writeFile(t, dir, "b3.yaml", "- PushFront: {value: {id: r0}}\n")

	out, err := runCommand(t, "json", "apply", snapshot, b1, b2, b3, "--key", "id")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// Sequence holds sealed values and cannot be decoded back; skip it.
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Length   int            `json:"length"`
			Batches  int            `json:"batches"`
			Failures []BatchFailure `json:"failures"`
			NewIDs   []string       `json:"new_ids"`
		} `json:"data"`
		Error *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBounds, resp.Error.Code)

	assert.Equal(t, 2, resp.Data.Length)
	assert.Equal(t, 3, resp.Data.Batches)
	assert.Equal(t, []string{"r0", "r1"}, resp.Data.NewIDs)

	require.Len(t, resp.Data.Failures, 1)
	fl := resp.Data.Failures[0]
	assert.Equal(t, b2, fl.File)
	assert.Equal(t, int64(2), fl.Seq)
	assert.Equal(t, 1, fl.Position)
	assert.Equal(t, ErrCodeBounds, fl.Code)
}

func TestApplyCommand_OneByOneStopsAtFailure(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.json", `["x"]`)
	updates := writeFile(t, dir, "updates.json", `[
		{"PopBack": {}},
		{"Remove": {"index": 0}}
	]`)

	out, err := runCommand(t, "text", "apply", snapshot, updates, "--one-by-one")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]")
	assert.Contains(t, out, "update 1")
}

func TestApplyCommand_OneByOneMatchesBatch(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.json", `[1, 2, 3]`)
	updates := writeFile(t, dir, "updates.json", `[
		{"Insert": {"index": 9, "value": 4}},
		{"Truncate": {"length": 2}},
		{"PushFront": {"value": 0}}
	]`)

	batched, err := runCommand(t, "text", "apply", snapshot, updates)
	require.NoError(t, err)
	single, err := runCommand(t, "text", "apply", snapshot, updates, "--one-by-one")
	require.NoError(t, err)

	assert.Equal(t, batched, single)
	assert.Contains(t, batched, "[0,1,2]")
}

func TestApplyCommand_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	updates := writeFile(t, dir, "updates.json", `[]`)

	out, err := runCommand(t, "text", "apply", dir+"/nope.json", updates)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestApplyCommand_UnrecognizedRecordIsLoadError(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.json", `[]`)
	updates := writeFile(t, dir, "updates.json", `[{"Clear": {}, "PopBack": {}}]`)

	out, err := runCommand(t, "text", "apply", snapshot, updates)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
}
