package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

// StatsService keeps the per-day counters behind the dashboard and charts.
// Days are UTC calendar days.
type StatsService struct {
	stats   repository.StatsRepository
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewStatsService(stats repository.StatsRepository, metrics *Metrics, logger *slog.Logger) *StatsService {
	return &StatsService{
		stats:   stats,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *StatsService) RecordVisit(ctx context.Context) error {
	if err := s.stats.Increment(ctx, model.CounterVisits, s.today()); err != nil {
		return fmt.Errorf("service/stats: recording visit: %w", err)
	}
	s.metrics.visit()
	return nil
}

func (s *StatsService) RecordComment(ctx context.Context) error {
	if err := s.stats.Increment(ctx, model.CounterComments, s.today()); err != nil {
		return fmt.Errorf("service/stats: recording comment: %w", err)
	}
	return nil
}

// Today returns today's counters; a day with no activity yet is all zeros.
func (s *StatsService) Today(ctx context.Context) (model.DayStats, error) {
	day := s.today()
	st, err := s.stats.GetDay(ctx, day)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.DayStats{Day: day}, nil
		}
		return model.DayStats{}, fmt.Errorf("service/stats: reading today: %w", err)
	}
	return *st, nil
}

// Points returns (day, count) pairs for counter, oldest day first.
func (s *StatsService) Points(ctx context.Context, counter model.Counter) ([]model.Point, error) {
	if !counter.Valid() {
		return nil, apperror.ValidationFailed("counter", fmt.Sprintf("unknown counter %q", counter))
	}

	days, err := s.stats.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/stats: listing days: %w", err)
	}

	points := make([]model.Point, 0, len(days))
	for _, d := range days {
		points = append(points, model.Point{Day: d.Day, Count: d.Get(counter)})
	}
	return points, nil
}

func (s *StatsService) today() time.Time {
	return model.Truncate(s.now())
}
