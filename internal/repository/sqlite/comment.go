package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a comment. A post_id that does not exist fails the
// foreign key and is reported as apperror.NotFound.
func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, email, name, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.PostID, c.Email, c.Name, c.Text, c.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return apperror.NotFound("post", strconv.FormatInt(c.PostID, 10))
		}
		return fmt.Errorf("sqlite: creating comment on post %d: %w", c.PostID, err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	return nil
}

// ListComments returns a post's comments newest first.
func (db *DB) ListComments(ctx context.Context, postID int64, opts repository.ListOptions) ([]model.Comment, error) {
	limit, offset := clamp(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, email, name, comment, created_at
		 FROM comments
		 WHERE post_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		postID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Email, &c.Name, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// CountComments returns how many comments a post has.
func (db *DB) CountComments(ctx context.Context, postID int64) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments for post %d: %w", postID, err)
	}
	return n, nil
}
