package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID string
}

func itemID(it item) (string, bool) {
	return it.ID, true
}

func TestCollectNewIdentifiers_Scenario(t *testing.T) {
	updates := []Update[item]{
		PushFront[item]{Value: item{ID: "id1"}},
		Clear[item]{},
		Append[item]{Values: []item{{ID: "id2"}, {ID: "id3"}}},
	}

	got := CollectNewIdentifiers(updates, itemID)
	assert.Equal(t, []string{"id1", "id2", "id3"}, got.Sorted())
}

func TestCollectNewIdentifiers_AllAdditiveKinds(t *testing.T) {
	updates := []Update[item]{
		Insert[item]{Index: 0, Value: item{ID: "insert"}},
		PushFront[item]{Value: item{ID: "front"}},
		PushBack[item]{Value: item{ID: "back"}},
		Set[item]{Index: 0, Value: item{ID: "set"}},
		Append[item]{Values: []item{{ID: "append1"}, {ID: "append2"}}},
		Reset[item]{Values: []item{{ID: "reset"}}},
	}

	got := CollectNewIdentifiers(updates, itemID)
	assert.Equal(t, []string{"append1", "append2", "back", "front", "insert", "reset", "set"}, got.Sorted())
}

func TestCollectNewIdentifiers_NonAdditiveContributeNothing(t *testing.T) {
	calls := 0
	identify := func(it item) (string, bool) {
		calls++
		return it.ID, true
	}

	updates := []Update[item]{
		Clear[item]{},
		PopFront[item]{},
		PopBack[item]{},
		Remove[item]{Index: 0},
		Truncate[item]{Length: 0},
	}

	got := CollectNewIdentifiers(updates, identify)
	assert.Zero(t, got.Len())
	assert.Zero(t, calls)
}

func TestCollectNewIdentifiers_AbsentExcluded(t *testing.T) {
	// An extractor mirroring "null, empty string or false" upstream values.
	identify := func(v any) (string, bool) {
		switch id := v.(type) {
		case string:
			return id, true
		default:
			return "", false
		}
	}

	updates := []Update[any]{
		Append[any]{Values: []any{"keep1", "", nil, false, "keep2"}},
		PushBack[any]{Value: ""},
	}

	got := CollectNewIdentifiers(updates, identify)
	assert.Equal(t, []string{"keep1", "keep2"}, got.Sorted())
	assert.False(t, got.Has(""))
}

func TestCollectNewIdentifiers_EmptyStringWithOKIsAbsent(t *testing.T) {
	got := CollectNewIdentifiers([]Update[item]{PushBack[item]{Value: item{}}}, itemID)
	assert.Zero(t, got.Len())
}

func TestCollectNewIdentifiers_DuplicatesCollapse(t *testing.T) {
	updates := []Update[item]{
		PushBack[item]{Value: item{ID: "dup"}},
		Set[item]{Index: 0, Value: item{ID: "dup"}},
		Append[item]{Values: []item{{ID: "dup"}, {ID: "other"}}},
	}

	got := CollectNewIdentifiers(updates, itemID)
	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Has("dup"))
	assert.True(t, got.Has("other"))
}

func TestCollectNewIdentifiers_OrderInsensitive(t *testing.T) {
	updates := []Update[item]{
		PushBack[item]{Value: item{ID: "a"}},
		Insert[item]{Index: 0, Value: item{ID: "b"}},
		Append[item]{Values: []item{{ID: "c"}}},
		Reset[item]{Values: []item{{ID: "d"}, {ID: "a"}}},
	}
	want := CollectNewIdentifiers(updates, itemID)

	permutations := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, perm := range permutations {
		shuffled := make([]Update[item], len(perm))
		for i, j := range perm {
			shuffled[i] = updates[j]
		}
		assert.Equal(t, want, CollectNewIdentifiers(shuffled, itemID))
	}
}

func TestCollectNewIdentifiers_UnrecognizedIsSilent(t *testing.T) {
	updates := []Update[item]{
		nil,
		&PushBack[item]{Value: item{ID: "pointer"}},
		PushBack[item]{Value: item{ID: "ok"}},
	}

	var got IDSet
	assert.NotPanics(t, func() {
		got = CollectNewIdentifiers(updates, itemID)
	})
	assert.Equal(t, []string{"ok"}, got.Sorted())
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a")
	s.Add("c")
	s.Union(NewIDSet("a", "d"))

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Sorted())
	assert.True(t, s.Has("d"))
	assert.False(t, s.Has("e"))
	assert.Empty(t, NewIDSet().Sorted())
}
