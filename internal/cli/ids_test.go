package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsCommand_Key(t *testing.T) {
	dir := t.TempDir()
	updates := writeFile(t, dir, "updates.json", `[
		{"PushFront": {"value": {"id": "id1"}}},
		{"Clear": {}},
		{"Append": {"values": [{"id": "id2"}, {"id": ""}, {"id": null}, {"other": 1}]}},
		{"Remove": {"index": 0}}
	]`)

	out, err := runCommand(t, "text", "ids", updates)
	require.NoError(t, err)
	assert.Equal(t, "id1\nid2\n", out)
}

func TestIDsCommand_SelfJSON(t *testing.T) {
	dir := t.TempDir()
	updates := writeFile(t, dir, "rooms.yaml", `
- Reset: {values: ["!b:example.org", "!a:example.org"]}
- PushBack: {value: "!a:example.org"}
`)

	out, err := runCommand(t, "json", "ids", updates, "--self")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   IDsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"!a:example.org", "!b:example.org"}, resp.Data.IDs)
	assert.Equal(t, 2, resp.Data.Count)
}

func TestIDsCommand_EmptyJSON(t *testing.T) {
	dir := t.TempDir()
	updates := writeFile(t, dir, "updates.json", `[{"PopBack": {}}]`)

	out, err := runCommand(t, "json", "ids", updates)
	require.NoError(t, err)
	assert.Contains(t, out, `"ids": []`)
}
