package database

import (
	"context"
	"testing"
	"time"
)

func TestStats_Increment(t *testing.T) {
	ctx := context.Background()
	repo := NewStatsRepository(newTestDB(t))

	stats, err := repo.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NewsCount != 0 || stats.LastCheck != nil || stats.LastCleanup != nil {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	checked := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return checked }

	if err := repo.Increment(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := repo.Increment(ctx, 3); err != nil {
		t.Fatal(err)
	}

	stats, err = repo.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NewsCount != 5 {
		t.Errorf("Expected news count 5, got %d", stats.NewsCount)
	}
	if stats.LastCheck == nil || !stats.LastCheck.Equal(checked) {
		t.Errorf("Expected last check %v, got %v", checked, stats.LastCheck)
	}
}
