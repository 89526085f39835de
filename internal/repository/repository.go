// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite is the only production implementation; service
// tests use in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/quill/internal/model"
)

// MaxLimit is the largest ListOptions.Limit an implementation honours; larger
// limits are cut down to it. Callers paging through a listing must not use a
// page size above MaxLimit or rows between pages are skipped.
const MaxLimit = 100

// ListOptions selects a window of a newest-first listing.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser returns apperror.Conflict("user", "email") on a duplicate email.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type PostRepository interface {
	// CreatePost returns apperror.Conflict("post", "title") on a duplicate title.
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	ListPosts(ctx context.Context, opts ListOptions) ([]model.Post, error)
	CountPosts(ctx context.Context) (int, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	// DeletePost removes the post and, through ON DELETE CASCADE, its comments.
	DeletePost(ctx context.Context, id int64) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID int64, opts ListOptions) ([]model.Comment, error)
	CountComments(ctx context.Context, postID int64) (int, error)
}

type StatsRepository interface {
	// Increment adds one to counter for day in a single atomic statement,
	// creating the day's row when it does not exist yet.
	Increment(ctx context.Context, counter model.Counter, day time.Time) error
	GetDay(ctx context.Context, day time.Time) (*model.DayStats, error)
	// ListDays returns every stored day, oldest first.
	ListDays(ctx context.Context) ([]model.DayStats, error)
}
