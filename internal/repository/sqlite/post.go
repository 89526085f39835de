package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// postColumns is shared by every post query. The LEFT JOIN keeps posts whose
// author row is missing.
const postColumns = `
	p.id, p.title, p.description, p.body, p.created_at,
	COALESCE(p.user_id, 0), COALESCE(u.email, '')
	FROM posts p LEFT JOIN users u ON u.id = p.user_id`

// CreatePost inserts a new post and fills in its id. CreatedAt defaults to
// now when the caller left it zero. A duplicate title returns
// apperror.Conflict("post", "title").
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.CreatedAt = post.CreatedAt.UTC()

	var userID any
	if post.UserID != 0 {
		userID = post.UserID
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (title, description, body, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		post.Title,
		post.Description,
		post.Body,
		post.CreatedAt,
		userID,
	)
	if err != nil {
		if conflict := uniqueViolation(err, "post", "title"); conflict != err {
			return conflict
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post id: %w", err)
	}
	return nil
}

// GetPost retrieves a single post with its author's email.
// Returns apperror.ErrNotFound when no post has that id.
func (db *DB) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Body, &p.CreatedAt, &p.UserID, &p.AuthorEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &p, nil
}

// ListPosts returns posts newest first. Posts sharing a timestamp are ordered
// by id so that consecutive pages never overlap.
func (db *DB) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit, offset := clamp(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Body, &p.CreatedAt, &p.UserID, &p.AuthorEmail); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// CountPosts returns the total number of posts.
func (db *DB) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// UpdatePost rewrites title, description and body. id, created_at and the
// owner are immutable.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, description = ?, body = ? WHERE id = ?`,
		post.Title,
		post.Description,
		post.Body,
		post.ID,
	)
	if err != nil {
		if conflict := uniqueViolation(err, "post", "title"); conflict != err {
			return conflict
		}
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", strconv.FormatInt(post.ID, 10))
	}
	return nil
}

// DeletePost removes a post. Its comments go with it (ON DELETE CASCADE).
func (db *DB) DeletePost(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", strconv.FormatInt(id, 10))
	}
	return nil
}
