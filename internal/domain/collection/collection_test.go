package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id     string
	author string
}

func (i item) EntryID() string { return i.id }

func TestPrependPutsNewestFirst(t *testing.T) {
	var items []item
	items = Prepend(items, item{id: "a"})
	items = Prepend(items, item{id: "b"})
	items = Prepend(items, item{id: "c"})

	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "b", "a"}, ids(items))
}

func TestPrependDoesNotAliasInput(t *testing.T) {
	base := make([]item, 1, 4)
	base[0] = item{id: "a"}

	first := Prepend(base, item{id: "b"})
	second := Prepend(base, item{id: "c"})

	assert.Equal(t, []string{"b", "a"}, ids(first))
	assert.Equal(t, []string{"c", "a"}, ids(second))
}

func TestRemoveByIDRemovesOnlyTarget(t *testing.T) {
	// Same author on every entry: removal must not be derived from the author.
	items := []item{
		{id: "3", author: "u1"},
		{id: "2", author: "u1"},
		{id: "1", author: "u1"},
	}

	rest, removed, err := RemoveByID(items, "2")

	require.NoError(t, err)
	assert.Equal(t, "2", removed.id)
	assert.Equal(t, []string{"3", "1"}, ids(rest))
	assert.Equal(t, []string{"3", "2", "1"}, ids(items), "input must be left untouched")
}

func TestRemoveByIDMissing(t *testing.T) {
	items := []item{{id: "1"}}

	rest, _, err := RemoveByID(items, "nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Equal(t, items, rest)

	_, _, err = RemoveByID(items, "")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestFind(t *testing.T) {
	items := []item{{id: "1", author: "x"}, {id: "2", author: "y"}}

	got, err := Find(items, "2")
	require.NoError(t, err)
	assert.Equal(t, "y", got.author)

	_, err = Find(items, "3")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestNewIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.id)
	}
	return out
}
