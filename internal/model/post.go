package model

import "time"

// Post is a blog article. Title is unique across all posts.
type Post struct {
	ID          int64     `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"` // short summary shown in listings
	Body        string    `json:"body"        db:"body"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UserID      int64     `json:"userId"      db:"user_id"`

	// AuthorEmail is filled by queries that join users; empty otherwise.
	AuthorEmail string `json:"authorEmail,omitempty" db:"-"`
}
