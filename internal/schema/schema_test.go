package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestValidateBatch_Valid(t *testing.T) {
	v := newValidator(t)

	data := `[
		{"Clear": {}},
		{"PopFront": {}},
		{"PopBack": null},
		{"Append": {"values": [{"id": "a"}, 1, null]}},
		{"PushFront": {"value": "x"}},
		{"PushBack": {"value": {"id": "b", "score": 0.5}}},
		{"Insert": {"index": 0, "value": "y"}},
		{"Set": {"index": 2, "value": null}},
		{"Remove": {"index": 1}},
		{"Truncate": {"length": 0}},
		{"Reset": {"values": []}}
	]`

	errs := v.ValidateBatch([]byte(data), "updates.json")
	assert.Empty(t, errs)
}

func TestValidateBatch_EmptyList(t *testing.T) {
	v := newValidator(t)
	assert.Empty(t, v.ValidateBatch([]byte(`[]`), "empty.json"))
}

func TestValidateBatch_ReportsEveryInvalidRecord(t *testing.T) {
	v := newValidator(t)

	data := `[
		{"PushBack": {"value": "ok"}},
		{"Clear": {}, "PopBack": {}},
		{"Insert": {"index": -1, "value": "x"}},
		{"Splice": {"index": 0}},
		{"Truncate": {}}
	]`

	errs := v.ValidateBatch([]byte(data), "updates.json")
	require.Len(t, errs, 4)

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
		assert.Equal(t, ErrInvalidUpdate, e.Code)
		assert.NotEmpty(t, e.Message)
	}
	assert.Equal(t, []string{"batch[1]", "batch[2]", "batch[3]", "batch[4]"}, fields)
}

func TestValidateBatch_RejectsUnknownKeys(t *testing.T) {
	v := newValidator(t)
	errs := v.ValidateBatch([]byte(`[{"PushBack": {"value": 1}, "meta": true}]`), "updates.json")
	require.Len(t, errs, 1)
	assert.Equal(t, "batch[0]", errs[0].Field)
}

func TestValidateBatch_NotList(t *testing.T) {
	v := newValidator(t)
	errs := v.ValidateBatch([]byte(`{"Clear": {}}`), "updates.json")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotList, errs[0].Code)
}

func TestValidateBatch_ParseError(t *testing.T) {
	v := newValidator(t)
	errs := v.ValidateBatch([]byte(`[{"Clear": `), "broken.json")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrParse, errs[0].Code)
}

func TestValidateBatch_YAML(t *testing.T) {
	v := newValidator(t)

	data := `
- PushBack:
    value: {id: a}
- Insert:
    index: 0
    value: b
- Remove:
    index: -3
`
	errs := v.ValidateBatch([]byte(data), "updates.yaml")
	require.Len(t, errs, 1)
	assert.Equal(t, "batch[2]", errs[0].Field)
	assert.Equal(t, ErrInvalidUpdate, errs[0].Code)
	assert.Greater(t, errs[0].Line, 0)
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator(t)

	assert.Empty(t, v.ValidateUpdate([]byte(`{"Set": {"index": 0, "value": "a"}}`), "u.json"))

	errs := v.ValidateUpdate([]byte(`{"Set": {"value": "a"}}`), "u.json")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidUpdate, errs[0].Code)
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "batch[0]", Message: "bad", Code: ErrInvalidUpdate, Line: 3}
	assert.Equal(t, "[E203] line 3: batch[0]: bad", e.Error())

	e.Line = 0
	assert.Equal(t, "[E203] batch[0]: bad", e.Error())
}
