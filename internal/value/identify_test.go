package value

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqsync/internal/diff"
)

func TestField(t *testing.T) {
	identify := Field("id")

	tests := []struct {
		name   string
		elem   Value
		wantID string
		wantOK bool
	}{
		{"string id", Obj(O("id", String("evt-1"))), "evt-1", true},
		{"int id", Obj(O("id", Int(42))), "42", true},
		{"empty string", Obj(O("id", String(""))), "", false},
		{"null", Obj(O("id", Null{})), "", false},
		{"false", Obj(O("id", Bool(false))), "", false},
		{"true is not an identifier", Obj(O("id", Bool(true))), "", false},
		{"missing key", Obj(O("other", String("x"))), "", false},
		{"nested object", Obj(O("id", Obj())), "", false},
		{"not an object", String("evt-1"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := identify(tt.elem)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestSelf(t *testing.T) {
	id, ok := Self()(String("!room:example.org"))
	assert.True(t, ok)
	assert.Equal(t, "!room:example.org", id)

	_, ok = Self()(Null{})
	assert.False(t, ok)
}

func TestByFingerprint(t *testing.T) {
	id, ok := ByFingerprint()(Obj(O("a", Int(1))))
	require.True(t, ok)
	assert.Len(t, id, 64)

	_, ok = ByFingerprint()(nil)
	assert.False(t, ok)
}

func TestField_CollectNewIdentifiers(t *testing.T) {
	updates := []diff.Update[Value]{
		diff.PushFront[Value]{Value: Obj(O("id", String("id1")))},
		diff.Clear[Value]{},
		diff.Append[Value]{Values: []Value{
			Obj(O("id", String("id2"))),
			Obj(O("id", String("id3"))),
			Obj(O("id", String(""))),
			Obj(O("id", Null{})),
			Obj(O("id", Bool(false))),
		}},
	}

	got := diff.CollectNewIdentifiers(updates, Field("id"))
	assert.Equal(t, []string{"id1", "id2", "id3"}, got.Sorted())
}

func TestProject(t *testing.T) {
	title := Project("title")

	assert.Equal(t, String("Hello"), title(Obj(O("title", String("Hello")), O("id", Int(1)))))
	assert.Equal(t, Null{}, title(Obj(O("id", Int(1)))))
	assert.Equal(t, Null{}, title(String("bare")))
}

func TestProject_MapBatch(t *testing.T) {
	updates := []diff.Update[Value]{
		diff.Reset[Value]{Values: []Value{Obj(O("id", Int(1)), O("name", String("ann")))}},
		diff.PushBack[Value]{Value: Obj(O("id", Int(2)), O("name", String("bob")))},
		diff.Remove[Value]{Index: 0},
	}

	mapped, err := diff.MapBatch(updates, Project("name"))
	require.NoError(t, err)

	names, err := diff.ApplyBatch(nil, mapped)
	require.NoError(t, err)
	assert.Equal(t, Strings("bob"), names)

	upper, err := diff.MapBatch(mapped, func(v Value) string {
		s, _ := v.(String)
		return strings.ToUpper(string(s))
	})
	require.NoError(t, err)
	assert.Equal(t, diff.PushBack[string]{Value: "BOB"}, upper[1])
}
