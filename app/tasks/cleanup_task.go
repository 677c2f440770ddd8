package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-relay/app/database"
)

// CleanupTask removes ledger records older than the retention window.
type CleanupTask struct {
	Task
	ledger    database.LedgerRepository
	retention time.Duration
	now       func() time.Time
}

func NewCleanupTask(ledger database.LedgerRepository, retention time.Duration) *CleanupTask {
	return &CleanupTask{
		Task:      NewTask(TaskTypeCleanup),
		ledger:    ledger,
		retention: retention,
		now:       time.Now,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cutoff := t.now().Add(-t.retention)
	deleted := t.ledger.PurgeOlderThan(ctx, cutoff)
	if deleted > 0 {
		slog.Info("Removed expired delivery records", "deleted", deleted, "cutoff", cutoff)
	} else {
		slog.Debug("No expired delivery records", "cutoff", cutoff)
	}

	return nil
}
