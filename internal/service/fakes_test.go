package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

// store is an in-memory stand-in for the SQLite repository. It keeps the
// same contracts: unique emails and titles, newest-first listings with id as
// the tie breaker, comments deleted with their post, one stats row per day.
type store struct {
	users    []model.User
	posts    []model.Post
	comments []model.Comment
	days     map[string]*model.DayStats

	// failures injected by tests
	incrementErr error
	listErr      error
}

var (
	_ repository.UserRepository    = (*store)(nil)
	_ repository.PostRepository    = (*store)(nil)
	_ repository.CommentRepository = (*store)(nil)
	_ repository.StatsRepository   = (*store)(nil)
)

func newStore() *store {
	return &store{days: make(map[string]*model.DayStats)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bounds(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	limit = min(limit, repository.MaxLimit)
	end := offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	return offset, end
}

func (s *store) CreateUser(_ context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", "email")
		}
	}
	u.ID = int64(len(s.users) + 1)
	u.CreatedAt = time.Now()
	s.users = append(s.users, *u)
	return nil
}

func (s *store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
}

func (s *store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (s *store) CountUsers(context.Context) (int, error) { return len(s.users), nil }

func (s *store) CreatePost(_ context.Context, p *model.Post) error {
	for _, existing := range s.posts {
		if existing.Title == p.Title {
			return apperror.Conflict("post", "title")
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	var nextID int64 = 1
	for _, existing := range s.posts {
		if existing.ID >= nextID {
			nextID = existing.ID + 1
		}
	}
	p.ID = nextID
	s.posts = append(s.posts, *p)
	return nil
}

func (s *store) GetPost(_ context.Context, id int64) (*model.Post, error) {
	for _, p := range s.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
}

func (s *store) ListPosts(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	sorted := append([]model.Post(nil), s.posts...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	from, to := bounds(len(sorted), opts.Limit, opts.Offset)
	return sorted[from:to], nil
}

func (s *store) CountPosts(context.Context) (int, error) { return len(s.posts), nil }

func (s *store) UpdatePost(_ context.Context, p *model.Post) error {
	idx := -1
	for i, existing := range s.posts {
		if existing.ID == p.ID {
			idx = i
		} else if existing.Title == p.Title {
			return apperror.Conflict("post", "title")
		}
	}
	if idx < 0 {
		return apperror.NotFound("post", strconv.FormatInt(p.ID, 10))
	}
	s.posts[idx].Title = p.Title
	s.posts[idx].Description = p.Description
	s.posts[idx].Body = p.Body
	return nil
}

func (s *store) DeletePost(_ context.Context, id int64) error {
	for i, p := range s.posts {
		if p.ID != id {
			continue
		}
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		kept := s.comments[:0]
		for _, c := range s.comments {
			if c.PostID != id {
				kept = append(kept, c)
			}
		}
		s.comments = kept
		return nil
	}
	return apperror.NotFound("post", strconv.FormatInt(id, 10))
}

func (s *store) CreateComment(_ context.Context, c *model.Comment) error {
	if _, err := s.GetPost(context.Background(), c.PostID); err != nil {
		return err
	}
	c.ID = int64(len(s.comments) + 1)
	s.comments = append(s.comments, *c)
	return nil
}

func (s *store) postComments(postID int64) []model.Comment {
	var out []model.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *store) ListComments(_ context.Context, postID int64, opts repository.ListOptions) ([]model.Comment, error) {
	all := s.postComments(postID)
	from, to := bounds(len(all), opts.Limit, opts.Offset)
	return all[from:to], nil
}

func (s *store) CountComments(_ context.Context, postID int64) (int, error) {
	return len(s.postComments(postID)), nil
}

func (s *store) Increment(_ context.Context, counter model.Counter, day time.Time) error {
	if s.incrementErr != nil {
		return s.incrementErr
	}
	key := day.Format(model.DayLayout)
	d, ok := s.days[key]
	if !ok {
		d = &model.DayStats{Day: model.Truncate(day)}
		s.days[key] = d
	}
	switch counter {
	case model.CounterVisits:
		d.Visits++
	case model.CounterComments:
		d.Comments++
	case model.CounterShares:
		d.Shares++
	}
	return nil
}

func (s *store) GetDay(_ context.Context, day time.Time) (*model.DayStats, error) {
	key := day.Format(model.DayLayout)
	d, ok := s.days[key]
	if !ok {
		return nil, apperror.NotFound("stats", key)
	}
	out := *d
	return &out, nil
}

func (s *store) ListDays(context.Context) ([]model.DayStats, error) {
	out := make([]model.DayStats, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
