package relay

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
)

const (
	DefaultSummaryMaxLength = 1500
	DefaultSendDelay        = time.Second

	// Telegram rejects longer captions on photo and video posts.
	maxCaptionLength = 1024
)

// Destination publishes a rendered post to a chat.
type Destination interface {
	SendText(ctx context.Context, chatID, text string) error
	SendPhoto(ctx context.Context, chatID, photoURL, caption string) error
	SendVideo(ctx context.Context, chatID, videoURL, caption string) error
}

type Options struct {
	SummaryMaxLength int
	SendDelay        time.Duration
}

type Router struct {
	ledger      database.LedgerRepository
	stats       database.StatsRepository
	destination Destination
	classifier  *feed.Classifier
	categories  []config.Category
	options     Options

	sleep func(ctx context.Context, d time.Duration) bool
}

func NewRouter(ledger database.LedgerRepository, stats database.StatsRepository, destination Destination, classifier *feed.Classifier, categories []config.Category, options Options) *Router {
	if options.SummaryMaxLength <= 0 {
		options.SummaryMaxLength = DefaultSummaryMaxLength
	}
	if options.SendDelay < 0 {
		options.SendDelay = 0
	}
	return &Router{
		ledger:      ledger,
		stats:       stats,
		destination: destination,
		classifier:  classifier,
		categories:  categories,
		options:     options,
		sleep:       sleep,
	}
}

// RunCycle relays every undelivered item to the destinations of the
// categories it matches and returns the number of successful sends. An item
// is recorded as delivered once at least one of its sends succeeds.
func (r *Router) RunCycle(ctx context.Context, items []feed.Item) int {
	total := 0

	for _, item := range items {
		if ctx.Err() != nil {
			slog.Warn("Delivery cycle interrupted", "error", ctx.Err())
			break
		}

		if !item.Valid() {
			continue
		}

		delivered, err := r.ledger.IsDelivered(ctx, item.Link)
		if err != nil {
			slog.Error("Failed to check delivery ledger", "link", item.Link, "error", err)
			continue
		}
		if delivered {
			continue
		}

		sent := r.routeItem(ctx, item)
		if sent == 0 {
			continue
		}
		total += sent

		// Sends already happened, so the record must survive cancellation.
		if err := r.ledger.MarkDelivered(context.WithoutCancel(ctx), item.Link, item.Title, item.Published); err != nil {
			slog.Error("Failed to record delivery", "link", item.Link, "error", err)
		}
	}

	if total > 0 {
		if err := r.stats.Increment(context.WithoutCancel(ctx), total); err != nil {
			slog.Error("Failed to update statistics", "error", err)
		}
	}

	return total
}

func (r *Router) routeItem(ctx context.Context, item feed.Item) int {
	normalized := item.Normalize()
	summary := Truncate(normalized.Summary, r.options.SummaryMaxLength)
	message := BuildMessage(normalized.Title, summary, item.Link)

	matched := r.classifier.Match(normalized.Title+" "+summary, r.categories)
	if len(matched) == 0 {
		slog.Debug("Item matched no category", "link", item.Link)
		return 0
	}

	caption := message
	if normalized.VideoURL != "" || normalized.PhotoURL != "" {
		if utf8.RuneCountInString(caption) > maxCaptionLength {
			caption = FitCaption(normalized.Title, normalized.Summary, item.Link, maxCaptionLength)
		}
	}

	sent := 0
	for _, category := range matched {
		if ctx.Err() != nil {
			break
		}

		kind, err := r.send(ctx, category.Destination, normalized, message, caption)
		if err != nil {
			slog.Error("Failed to deliver item", "category", category.Name, "destination", category.Destination, "link", item.Link, "error", err)
			continue
		}

		sent++
		slog.Info("Item delivered", "category", category.Name, "destination", category.Destination, "kind", kind, "link", item.Link)

		if r.options.SendDelay > 0 && !r.sleep(ctx, r.options.SendDelay) {
			break
		}
	}

	return sent
}

// send prefers video over photo over plain text.
func (r *Router) send(ctx context.Context, chatID string, item feed.Normalized, message, caption string) (string, error) {
	switch {
	case item.VideoURL != "":
		return "video", r.destination.SendVideo(ctx, chatID, item.VideoURL, caption)
	case item.PhotoURL != "":
		return "photo", r.destination.SendPhoto(ctx, chatID, item.PhotoURL, caption)
	default:
		return "text", r.destination.SendText(ctx, chatID, message)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
