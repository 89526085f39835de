package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sakif/quill/internal/auth"
)

const testSecret = "test-secret-at-least-16-chars!!"

// clock is a settable time source shared by every service in a fixture.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	store    *store
	clock    *clock
	metrics  *Metrics
	tokens   *auth.TokenService
	auth     *AuthService
	posts    *PostService
	comments *CommentService
	stats    *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	st := newStore()
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	metrics := NewMetrics(prometheus.NewRegistry())
	logger := discardLogger()

	stats := NewStatsService(st, metrics, logger)
	stats.now = clk.now
	posts := NewPostService(st, metrics, logger)
	posts.now = clk.now
	comments := NewCommentService(st, stats, metrics, logger)
	comments.now = clk.now

	return &fixture{
		store:    st,
		clock:    clk,
		metrics:  metrics,
		tokens:   tokens,
		auth:     NewAuthService(st, tokens, auth.NewPasswordServiceForTest(4), metrics, logger, false),
		posts:    posts,
		comments: comments,
		stats:    stats,
	}
}
