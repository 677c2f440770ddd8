package database

import (
	"context"
	"time"
)

type LedgerRepository interface {
	IsDelivered(ctx context.Context, link string) (bool, error)
	MarkDelivered(ctx context.Context, link, title, publishedAt string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) int
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]DeliveryRecord, error)
}

type StatsRepository interface {
	Increment(ctx context.Context, delivered int) error
	Get(ctx context.Context) (*Stats, error)
}

var (
	_ LedgerRepository = (*SQLiteLedger)(nil)
	_ StatsRepository  = (*SQLiteStats)(nil)
)
