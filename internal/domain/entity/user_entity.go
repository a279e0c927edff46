package entity

import (
	"time"
)

// User is the aggregate root for accounts.
// Password holds the bcrypt hash, never the plain text.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	AvatarURL string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// Authorship is the author identity captured when a post or comment is
// written. It is intentionally not refreshed from the live User so history
// keeps the name and avatar the author had at the time.
type Authorship struct {
	UserID string `json:"user"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Snapshot captures the current name and avatar of u.
func (u *User) Snapshot() Authorship {
	return Authorship{UserID: u.ID, Name: u.Name, Avatar: u.AvatarURL}
}

// Owner is the public view of a user attached to profile reads.
type Owner struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
