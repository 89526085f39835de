package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
)

func TestToday_EmptyDayIsZero(t *testing.T) {
	f := newFixture(t)

	today, err := f.stats.Today(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DayStats{Day: model.Truncate(f.clock.t)}, today)
}

func TestRecordVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.stats.RecordVisit(ctx))
	require.NoError(t, f.stats.RecordVisit(ctx))

	today, err := f.stats.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today.Visits)
	assert.Zero(t, today.Comments)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.visits))
}

func TestPoints_OldestFirstPerCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day1 := f.clock.t
	require.NoError(t, f.stats.RecordVisit(ctx))
	f.clock.t = day1.Add(48 * time.Hour)
	require.NoError(t, f.stats.RecordVisit(ctx))
	require.NoError(t, f.stats.RecordVisit(ctx))
	require.NoError(t, f.stats.RecordComment(ctx))
	f.clock.t = day1.Add(24 * time.Hour)
	require.NoError(t, f.stats.RecordComment(ctx))

	visits, err := f.stats.Points(ctx, model.CounterVisits)
	require.NoError(t, err)
	assert.Equal(t, []model.Point{
		{Day: model.Truncate(day1), Count: 1},
		{Day: model.Truncate(day1.Add(24 * time.Hour)), Count: 0},
		{Day: model.Truncate(day1.Add(48 * time.Hour)), Count: 2},
	}, visits)

	comments, err := f.stats.Points(ctx, model.CounterComments)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, []int64{0, 1, 1}, []int64{comments[0].Count, comments[1].Count, comments[2].Count})
}

func TestPoints_UnknownCounter(t *testing.T) {
	f := newFixture(t)

	_, err := f.stats.Points(context.Background(), model.Counter("likes"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
