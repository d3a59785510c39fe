package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitFailure, "inner"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "load", errors.New("boom"))
	assert.Equal(t, "load: boom", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "boom")

	assert.Equal(t, "only", NewExitError(ExitFailure, "only").Error())
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"count": 2}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"count": float64(2)}, resp.Data)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeBounds, "index 4 out of range", map[string]int{"length": 2}))
	assert.Contains(t, buf.String(), "Error [E102]: index 4 out of range")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Failure(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Failure(ErrCodeUnrecognized, "bad batch", []int{1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnrecognized, resp.Error.Code)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("loaded %d", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "loaded 3\n", errOut.String())
}

func TestFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := fail(f, ExitCommandError, ErrCodeNotFound, "missing", nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005: missing")
	assert.Contains(t, buf.String(), "Error [E005]: missing")
}
