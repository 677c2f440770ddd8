package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SQLiteStats struct {
	db  *DB
	now func() time.Time
}

func NewStatsRepository(db *DB) *SQLiteStats {
	return &SQLiteStats{db: db, now: time.Now}
}

// Increment adds delivered to the running total and stamps the check time.
func (r *SQLiteStats) Increment(ctx context.Context, delivered int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stats SET news_count = news_count + ?, last_check = ? WHERE id = 1
	`, delivered, formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}
	return nil
}

func (r *SQLiteStats) Get(ctx context.Context) (*Stats, error) {
	var (
		stats       Stats
		lastCheck   sql.NullString
		lastCleanup sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT news_count, last_check, last_cleanup FROM stats WHERE id = 1
	`).Scan(&stats.NewsCount, &lastCheck, &lastCleanup)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if stats.LastCheck, err = nullableTime(lastCheck); err != nil {
		return nil, err
	}
	if stats.LastCleanup, err = nullableTime(lastCleanup); err != nil {
		return nil, err
	}

	return &stats, nil
}

func nullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", value.String, err)
	}
	return &t, nil
}
