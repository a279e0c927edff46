// Package policy holds the ownership rules checked before any mutation.
package policy

import "errors"

var (
	// ErrNotOwner means the aggregate exists but belongs to another user.
	ErrNotOwner = errors.New("user not authorized")
	// ErrNotAuthor means a nested entry exists but was written by another user.
	ErrNotAuthor = errors.New("user is not the author")
)

// Authorize allows a mutation of an aggregate only when the acting identity is
// its owner. There is no hierarchy, delegation or admin override.
func Authorize(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return ErrNotOwner
	}
	return nil
}

// AuthorizeEntry is the per-entry variant used for comments.
func AuthorizeEntry(actorID, authorID string) error {
	if actorID == "" || actorID != authorID {
		return ErrNotAuthor
	}
	return nil
}
