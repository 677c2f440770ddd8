package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// SQLiteLedger records which links have already been relayed.
type SQLiteLedger struct {
	db  *DB
	now func() time.Time
}

func NewLedgerRepository(db *DB) *SQLiteLedger {
	return &SQLiteLedger{db: db, now: time.Now}
}

func (r *SQLiteLedger) IsDelivered(ctx context.Context, link string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM delivered_items WHERE link = ? LIMIT 1`, link).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check delivery: %w", err)
	}
	return true, nil
}

// MarkDelivered records link as delivered. Recording the same link again is a no-op.
func (r *SQLiteLedger) MarkDelivered(ctx context.Context, link, title, publishedAt string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO delivered_items (link, title, published_at, published_ts, sent_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (link) DO NOTHING
	`, link, title, publishedAt, publishedTimestamp(publishedAt), formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to mark delivered: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes records published or sent before cutoff and stamps
// the cleanup time. Storage failures are logged and reported as zero deletions.
func (r *SQLiteLedger) PurgeOlderThan(ctx context.Context, cutoff time.Time) int {
	deleted, err := r.purge(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to purge delivered items", "cutoff", cutoff, "error", err)
		return 0
	}
	return deleted
}

func (r *SQLiteLedger) purge(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bound := formatTime(cutoff)
	result, err := tx.ExecContext(ctx, `
		DELETE FROM delivered_items
		WHERE sent_at < ?
		   OR (published_ts IS NOT NULL AND published_ts < ?)
	`, bound, bound)
	if err != nil {
		return 0, fmt.Errorf("failed to delete delivered items: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE stats SET last_cleanup = ? WHERE id = 1`, formatTime(r.now())); err != nil {
		return 0, fmt.Errorf("failed to stamp cleanup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}

	return int(deleted), nil
}

func (r *SQLiteLedger) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM delivered_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count delivered items: %w", err)
	}
	return count, nil
}

// Recent returns the most recently sent records, newest first.
func (r *SQLiteLedger) Recent(ctx context.Context, limit int) ([]DeliveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT link, title, published_at, sent_at
		FROM delivered_items
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent deliveries: %w", err)
	}
	defer rows.Close()

	var records []DeliveryRecord
	for rows.Next() {
		var (
			record DeliveryRecord
			sentAt string
		)
		if err := rows.Scan(&record.Link, &record.Title, &record.PublishedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery row: %w", err)
		}
		if record.SentAt, err = parseTime(sentAt); err != nil {
			return nil, fmt.Errorf("failed to parse sent_at %q: %w", sentAt, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery rows: %w", err)
	}

	return records, nil
}

// publishedTimestamp normalizes a feed date for retention. Unparseable dates
// are stored as NULL and only the send time ages them out.
func publishedTimestamp(publishedAt string) sql.NullString {
	publishedAt = strings.TrimSpace(publishedAt)
	if publishedAt == "" {
		return sql.NullString{}
	}

	t, err := dateparse.ParseAny(publishedAt)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
