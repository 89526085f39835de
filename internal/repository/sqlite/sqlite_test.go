package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/quill/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test db")
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "$2a$04$notarealhash"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createTestPost(t *testing.T, db *DB, title string, at time.Time) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, Description: title + " summary", Body: title + " body", CreatedAt: at}
	require.NoError(t, db.CreatePost(context.Background(), p))
	return p
}

func createTestComment(t *testing.T, db *DB, postID int64, name string, at time.Time) *model.Comment {
	t.Helper()
	c := &model.Comment{PostID: postID, Email: name + "@example.com", Name: name, Text: "hello from " + name, CreatedAt: at}
	require.NoError(t, db.CreateComment(context.Background(), c))
	return c
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.migrate())
	require.NoError(t, db.migrate())
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Ping(context.Background()))
}
