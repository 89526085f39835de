package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Comment is a visitor reply attached to a Post. Comments are never edited.
type Comment struct {
	ID        int64     `json:"id"        db:"id"`
	PostID    int64     `json:"postId"    db:"post_id"`
	Email     string    `json:"-"         db:"email"`
	Name      string    `json:"name"      db:"name"`
	Text      string    `json:"text"      db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Avatar returns the Gravatar identicon URL for the commenter, size pixels square.
func (c Comment) Avatar(size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(c.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d",
		hex.EncodeToString(sum[:]), size)
}
