// Package collection edits the ordered sequences nested inside an aggregate
// (likes, comments, experience, education).
//
// Entries are owned inline by their parent. New entries are prepended so the
// newest is always at index 0, and addressable entries are removed strictly by
// their own generated id.
package collection

import (
	"errors"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("entry not found")

// Entry is a nested element addressed by a generated id.
type Entry interface {
	EntryID() string
}

// NewID returns a fresh identifier for a nested entry.
func NewID() string {
	return uuid.NewString()
}

// Prepend returns a new slice with item at index 0 followed by items.
func Prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// IndexFunc returns the index of the first item matching fn, or -1.
func IndexFunc[T any](items []T, fn func(T) bool) int {
	for i, it := range items {
		if fn(it) {
			return i
		}
	}
	return -1
}

// IndexByID returns the index of the entry whose id equals id, or -1.
func IndexByID[T Entry](items []T, id string) int {
	if id == "" {
		return -1
	}
	return IndexFunc(items, func(it T) bool { return it.EntryID() == id })
}

// RemoveAt returns a new slice without the element at i. i must be in range.
func RemoveAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// Find returns the entry with the given id.
func Find[T Entry](items []T, id string) (T, error) {
	var zero T
	i := IndexByID(items, id)
	if i < 0 {
		return zero, ErrEntryNotFound
	}
	return items[i], nil
}

// RemoveByID removes exactly the entry with the given id and returns the
// remaining entries along with the removed one. Other entries keep their order.
func RemoveByID[T Entry](items []T, id string) ([]T, T, error) {
	var zero T
	i := IndexByID(items, id)
	if i < 0 {
		return items, zero, ErrEntryNotFound
	}
	removed := items[i]
	return RemoveAt(items, i), removed, nil
}
