package entity

import (
	"errors"
	"time"

	"github.com/oksasatya/devconnector-api/internal/domain/collection"
	"github.com/oksasatya/devconnector-api/internal/domain/policy"
)

var (
	ErrAlreadyLiked = errors.New("post already liked")
	ErrNotLiked     = errors.New("post has not yet been liked")
)

// Post is an aggregate owned by the user in Authorship.UserID.
// Likes and Comments live inline and have no existence outside the post.
type Post struct {
	ID string `json:"_id"`
	Authorship
	Text      string    `json:"text"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"date"`
}

// Like identifies the liking user; at most one per user per post.
type Like struct {
	UserID string `json:"user"`
}

type Comment struct {
	ID string `json:"_id"`
	Authorship
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"date"`
}

func (c Comment) EntryID() string { return c.ID }

// NewPost builds a post authored by author. Nested sequences start empty.
func NewPost(author Authorship, text string, now time.Time) *Post {
	return &Post{
		Authorship: author,
		Text:       text,
		Likes:      []Like{},
		Comments:   []Comment{},
		CreatedAt:  now,
	}
}

// OwnerID is the identity the ownership guard checks against.
func (p *Post) OwnerID() string { return p.UserID }

func (p *Post) HasLiked(userID string) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID string) int {
	return collection.IndexFunc(p.Likes, func(l Like) bool { return l.UserID == userID })
}

// Like prepends a like for userID, or fails with ErrAlreadyLiked.
func (p *Post) Like(userID string) error {
	if p.HasLiked(userID) {
		return ErrAlreadyLiked
	}
	p.Likes = collection.Prepend(p.Likes, Like{UserID: userID})
	return nil
}

// Unlike removes the like of userID, or fails with ErrNotLiked.
func (p *Post) Unlike(userID string) error {
	i := p.likeIndex(userID)
	if i < 0 {
		return ErrNotLiked
	}
	p.Likes = collection.RemoveAt(p.Likes, i)
	return nil
}

// AddComment prepends c with a freshly generated id and returns the stored entry.
func (p *Post) AddComment(author Authorship, text string, now time.Time) Comment {
	c := Comment{
		ID:         collection.NewID(),
		Authorship: author,
		Text:       text,
		CreatedAt:  now,
	}
	p.Comments = collection.Prepend(p.Comments, c)
	return c
}

// RemoveComment removes the comment with commentID. Only its author may do so.
func (p *Post) RemoveComment(commentID, actorID string) (Comment, error) {
	c, err := collection.Find(p.Comments, commentID)
	if err != nil {
		return Comment{}, err
	}
	if err := policy.AuthorizeEntry(actorID, c.UserID); err != nil {
		return Comment{}, err
	}
	p.Comments, c, err = collection.RemoveByID(p.Comments, commentID)
	return c, err
}

// Clone returns a deep copy so callers can mutate without aliasing storage.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Likes = append(make([]Like, 0, len(p.Likes)), p.Likes...)
	cp.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	return &cp
}
