package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

func NewHandler(ledger database.LedgerRepository, stats database.StatsRepository, configs ConfigSource,
	scheduler tasks.TaskSchedulerInterface, newPollTask func() tasks.TaskInterface, retention time.Duration) *Handler {
	return &Handler{
		ledger:      ledger,
		stats:       stats,
		configs:     configs,
		scheduler:   scheduler,
		newPollTask: newPollTask,
		generator:   feed.NewGenerator(),
		retention:   retention,
		version:     cfg.GetVersion(),
		now:         time.Now,
	}
}

const archiveSize = 50

// GetFeed serves the most recently relayed items as RSS.
func (h *Handler) GetFeed(c *gin.Context) {
	records, err := h.ledger.Recent(c.Request.Context(), archiveSize)
	if err != nil {
		slog.Error("Database error", "operation", "recent_deliveries", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + c.Request.Host

	rss, err := h.generator.Run(feed.Channel{
		Title:       "RSS Relay",
		Link:        base,
		Description: "Items recently relayed to Telegram channels",
		SelfLink:    base + "/feed.xml",
		Version:     h.version,
	}, records)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(records)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.ledger.Count(c.Request.Context()); err == nil {
		health["delivered_items"] = count
	} else {
		slog.Error("Database error", "operation", "count_delivered", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.stats.Get(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	count, err := h.ledger.Count(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "count_delivered", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	config := h.configs.Current()
	c.JSON(http.StatusOK, map[string]interface{}{
		"news_count":      stats.NewsCount,
		"last_check":      formatOptional(stats.LastCheck),
		"last_cleanup":    formatOptional(stats.LastCleanup),
		"delivered_items": count,
		"retention_days":  int(h.retention / (24 * time.Hour)),
		"feeds":           len(config.Feeds),
		"categories":      len(config.Categories),
		"destinations":    config.Destinations(),
	})
}

func (h *Handler) APIListCategories(c *gin.Context) {
	config := h.configs.Current()

	categories := make([]categoryResponse, 0, len(config.Categories))
	for _, category := range config.Categories {
		synonyms := category.Synonyms
		if synonyms == nil {
			synonyms = []string{}
		}
		categories = append(categories, categoryResponse{
			Name:        category.Name,
			Destination: category.Destination,
			Link:        category.Link,
			Synonyms:    synonyms,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"match_mode": config.MatchMode,
		"total":      len(categories),
	})
}

func (h *Handler) APITriggerCycle(c *gin.Context) {
	task := h.newPollTask()
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue poll task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue cycle", "message": err.Error()})
		return
	}

	slog.Info("Delivery cycle requested via API", "task_id", task.GetID())
	c.JSON(http.StatusAccepted, gin.H{
		"message": "Delivery cycle enqueued",
		"task_id": task.GetID(),
	})
}

func (h *Handler) APICleanup(c *gin.Context) {
	cutoff := h.now().Add(-h.retention)
	deleted := h.ledger.PurgeOlderThan(c.Request.Context(), cutoff)

	slog.Info("Retention sweep requested via API", "deleted", deleted, "cutoff", cutoff)
	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
}

func formatOptional(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.In(time.Local).Format(time.RFC3339)
}
