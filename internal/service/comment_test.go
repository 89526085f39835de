package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/model"
)

func comment(name string) form.Comment {
	return form.Comment{Email: "v@x.com", Name: name, Text: "hello"}
}

func TestCreateComment_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Post ids are assigned in order; make post 7.
	var post *model.Post
	for i := 1; i <= 7; i++ {
		post = createPost(t, f, fmt.Sprintf("post %d", i))
	}
	require.Equal(t, int64(7), post.ID)

	before, err := f.stats.Today(ctx)
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, 7, comment("Vee"))
	require.NoError(t, err)

	page, err := f.comments.List(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	after, err := f.stats.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Comments+1, after.Comments)
}

func TestCreateComment_EachIncrementsByOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := createPost(t, f, "P")

	for i := 0; i < 3; i++ {
		before, err := f.stats.Today(ctx)
		require.NoError(t, err)

		_, err = f.comments.Create(ctx, p.ID, comment(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)

		after, err := f.stats.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Comments+1, after.Comments)
	}
}

func TestCreateComment_UnknownPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.comments.Create(context.Background(), 42, comment("Vee"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateComment_Validation(t *testing.T) {
	f := newFixture(t)
	p := createPost(t, f, "P")

	_, err := f.comments.Create(context.Background(), p.ID, form.Comment{Email: "nope"})

	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, f.store.comments)
	assert.Empty(t, f.store.days, "a rejected comment does not count")
}

func TestCreateComment_StatsFailureKeepsComment(t *testing.T) {
	f := newFixture(t)
	p := createPost(t, f, "P")
	f.store.incrementErr = errors.New("locked")

	c, err := f.comments.Create(context.Background(), p.ID, comment("Vee"))

	require.NoError(t, err)
	assert.NotZero(t, c.ID)
}

func TestListComments_NewestFirstAndPaged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := createPost(t, f, "P")
	for i := 0; i < 5; i++ {
		_, err := f.comments.Create(ctx, p.ID, comment(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
		f.clock.t = f.clock.t.Add(time.Minute)
	}

	first, err := f.comments.List(ctx, p.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "c4", first.Items[0].Name)
	assert.Equal(t, "c3", first.Items[1].Name)
	assert.True(t, first.HasNext)

	last, err := f.comments.List(ctx, p.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "c0", last.Items[0].Name)
	assert.False(t, last.HasNext)

	_, err = f.comments.List(ctx, p.ID, 4, 2)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletePost_RemovesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := createPost(t, f, "P")
	for i := 0; i < 2; i++ {
		_, err := f.comments.Create(ctx, p.ID, comment(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
	}

	require.NoError(t, f.posts.Delete(ctx, p.ID))

	_, err := f.posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	n, err := f.store.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
