package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

var _ repository.StatsRepository = (*DB)(nil)

// Increment bumps one counter for the given day.
//
// HOW THE UPSERT WORKS:
//
//	INSERT INTO stats (day, visits) VALUES ('2026-10-19', 1)
//	ON CONFLICT(day) DO UPDATE SET visits = visits + 1
//
// The first request of a day inserts the row with its counter at 1 and the
// other counters at their default 0. Every later request hits the primary
// key conflict and takes the UPDATE branch, which adds 1 to the value stored
// at that moment rather than to anything the caller read earlier.
//
// The upsert is a single statement, so two requests racing on a day that has
// no row yet cannot both insert, and neither can increment from a stale read.
// SQLite serialises writers; busy_timeout in the DSN makes the loser wait
// instead of failing with SQLITE_BUSY.
//
// The counter name is interpolated into the SQL only after Valid() restricts
// it to the three known column names.
func (db *DB) Increment(ctx context.Context, counter model.Counter, day time.Time) error {
	if !counter.Valid() {
		return fmt.Errorf("sqlite: unknown stats counter %q", counter)
	}

	query := fmt.Sprintf(
		`INSERT INTO stats (day, %[1]s) VALUES (?, 1)
		 ON CONFLICT(day) DO UPDATE SET %[1]s = %[1]s + 1`,
		counter,
	)
	if _, err := db.conn.ExecContext(ctx, query, dayKey(day)); err != nil {
		return fmt.Errorf("sqlite: incrementing %s for %s: %w", counter, dayKey(day), err)
	}
	return nil
}

// GetDay returns the counters for day, or apperror.ErrNotFound when nothing
// was recorded that day.
func (db *DB) GetDay(ctx context.Context, day time.Time) (*model.DayStats, error) {
	key := dayKey(day)
	var (
		s   model.DayStats
		raw string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT day, visits, comments, shares FROM stats WHERE day = ?`, key,
	).Scan(&raw, &s.Visits, &s.Comments, &s.Shares)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("stats", key)
		}
		return nil, fmt.Errorf("sqlite: getting stats for %s: %w", key, err)
	}

	if s.Day, err = time.Parse(model.DayLayout, raw); err != nil {
		return nil, fmt.Errorf("sqlite: parsing stats day %q: %w", raw, err)
	}
	return &s, nil
}

// ListDays returns every recorded day, oldest first.
func (db *DB) ListDays(ctx context.Context) ([]model.DayStats, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT day, visits, comments, shares FROM stats ORDER BY day ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing stats: %w", err)
	}
	defer rows.Close()

	var days []model.DayStats
	for rows.Next() {
		var (
			s   model.DayStats
			raw string
		)
		if err := rows.Scan(&raw, &s.Visits, &s.Comments, &s.Shares); err != nil {
			return nil, fmt.Errorf("sqlite: scanning stats row: %w", err)
		}
		if s.Day, err = time.Parse(model.DayLayout, raw); err != nil {
			return nil, fmt.Errorf("sqlite: parsing stats day %q: %w", raw, err)
		}
		days = append(days, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stats: %w", err)
	}

	return days, nil
}

func dayKey(t time.Time) string {
	return model.Truncate(t).Format(model.DayLayout)
}
