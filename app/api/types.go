package api

import (
	"time"

	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

type ConfigSource interface {
	Current() *config.Config
}

var _ ConfigSource = (*config.Loader)(nil)

type GeneratorInterface interface {
	Run(channel feed.Channel, records []database.DeliveryRecord) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	ledger      database.LedgerRepository
	stats       database.StatsRepository
	configs     ConfigSource
	scheduler   tasks.TaskSchedulerInterface
	newPollTask func() tasks.TaskInterface
	generator   GeneratorInterface
	retention   time.Duration
	version     string
	now         func() time.Time
}

type categoryResponse struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination"`
	Link        string   `json:"link,omitempty"`
	Synonyms    []string `json:"synonyms"`
}
