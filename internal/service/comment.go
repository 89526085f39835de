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

type CommentService struct {
	comments repository.CommentRepository
	stats    *StatsService
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, stats *StatsService, metrics *Metrics, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		stats:    stats,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns one page of a post's comments, newest first.
func (s *CommentService) List(ctx context.Context, postID int64, page, size int) (model.Page[model.Comment], error) {
	total, err := s.comments.CountComments(ctx, postID)
	if err != nil {
		return model.Page[model.Comment]{}, fmt.Errorf("service/comment: counting comments on %d: %w", postID, err)
	}

	opts, err := window(page, size, total)
	if err != nil {
		return model.Page[model.Comment]{}, err
	}

	comments, err := s.comments.ListComments(ctx, postID, opts)
	if err != nil {
		return model.Page[model.Comment]{}, fmt.Errorf("service/comment: listing comments on %d: %w", postID, err)
	}
	return model.NewPage(comments, page, opts.Limit, total), nil
}

// Create stores a visitor comment and bumps today's comment counter. A
// failed counter update is logged; the comment is kept.
func (s *CommentService) Create(ctx context.Context, postID int64, in form.Comment) (*model.Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := &model.Comment{
		PostID:    postID,
		Email:     in.Email,
		Name:      in.Name,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/comment: creating comment on %d: %w", postID, err)
	}

	if err := s.stats.RecordComment(ctx); err != nil {
		s.logger.Error("recording comment stat", slog.String("error", err.Error()))
	}

	s.metrics.comment()
	s.logger.Info("comment created", slog.Int64("postID", postID), slog.Int64("commentID", c.ID))
	return c, nil
}
