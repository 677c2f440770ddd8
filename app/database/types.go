package database

import (
	"time"
)

// Timestamps are stored as fixed-width UTC text so that string order is time order.
const timeLayout = "2006-01-02 15:04:05"

type DeliveryRecord struct {
	Link        string
	Title       string
	PublishedAt string // As received from the feed
	SentAt      time.Time
}

type Stats struct {
	NewsCount   int
	LastCheck   *time.Time
	LastCleanup *time.Time
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
