package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

// feedBatch is the page size used when walking every post for the feed.
const feedBatch = 100

type PostService struct {
	posts   repository.PostRepository
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewPostService(posts repository.PostRepository, metrics *Metrics, logger *slog.Logger) *PostService {
	return &PostService{
		posts:   posts,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ListRecent returns at most limit posts, newest first.
func (s *PostService) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("service/post: listing recent posts: %w", err)
	}
	return posts, nil
}

// List returns one page of posts, newest first.
func (s *PostService) List(ctx context.Context, page, size int) (model.Page[model.Post], error) {
	total, err := s.posts.CountPosts(ctx)
	if err != nil {
		return model.Page[model.Post]{}, fmt.Errorf("service/post: counting posts: %w", err)
	}

	opts, err := window(page, size, total)
	if err != nil {
		return model.Page[model.Post]{}, err
	}

	posts, err := s.posts.ListPosts(ctx, opts)
	if err != nil {
		return model.Page[model.Post]{}, fmt.Errorf("service/post: listing page %d: %w", page, err)
	}
	return model.NewPage(posts, page, opts.Limit, total), nil
}

// All returns every post, newest first.
func (s *PostService) All(ctx context.Context) ([]model.Post, error) {
	var all []model.Post
	for offset := 0; ; offset += feedBatch {
		batch, err := s.posts.ListPosts(ctx, repository.ListOptions{Limit: feedBatch, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("service/post: listing posts at %d: %w", offset, err)
		}
		all = append(all, batch...)
		if len(batch) < feedBatch {
			return all, nil
		}
	}
}

func (s *PostService) Count(ctx context.Context) (int, error) {
	n, err := s.posts.CountPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/post: counting posts: %w", err)
	}
	return n, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/post: getting post %d: %w", id, err)
	}
	return post, nil
}

// Create validates in and stores a new post owned by ownerID.
func (s *PostService) Create(ctx context.Context, in form.Post, ownerID int64) (*model.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		UserID:      ownerID,
		CreatedAt:   s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, titleConflict(err, "creating post")
	}

	s.metrics.post("create")
	s.logger.Info("post created", slog.Int64("postID", post.ID), slog.Int64("userID", ownerID))
	return post, nil
}

// Update replaces title, description and body of post id.
func (s *PostService) Update(ctx context.Context, id int64, in form.Post) (*model.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post := &model.Post{ID: id, Title: in.Title, Description: in.Description, Body: in.Body}
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, titleConflict(err, fmt.Sprintf("updating post %d", id))
	}

	s.metrics.post("update")
	s.logger.Info("post updated", slog.Int64("postID", id))
	return s.Get(ctx, id)
}

// Delete removes post id together with its comments.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/post: deleting post %d: %w", id, err)
	}

	s.metrics.post("delete")
	s.logger.Info("post deleted", slog.Int64("postID", id))
	return nil
}

func titleConflict(err error, doing string) error {
	if errors.Is(err, apperror.ErrConflict) {
		return apperror.ValidationFailed("title", "a post with this title already exists")
	}
	return fmt.Errorf("service/post: %s: %w", doing, err)
}
