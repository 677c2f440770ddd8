package tasks

import (
	"context"
	"log/slog"
)

// PollFeedsTask runs one delivery cycle: fetch every feed, then relay the
// items that have not been delivered yet.
type PollFeedsTask struct {
	Task
	feeds     []string
	retriever FeedRetriever
	router    CycleRunner
}

func NewPollFeedsTask(feeds []string, retriever FeedRetriever, router CycleRunner) *PollFeedsTask {
	return &PollFeedsTask{
		Task:      NewTask(TaskTypePollFeeds),
		feeds:     feeds,
		retriever: retriever,
		router:    router,
	}
}

func (t *PollFeedsTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info("Checking feeds for new items", "feeds", len(t.feeds))

	items := t.retriever.FetchAll(ctx, t.feeds)
	if len(items) == 0 {
		slog.Warn("No items retrieved from any feed")
		return nil
	}

	sent := t.router.RunCycle(ctx, items)
	if sent > 0 {
		slog.Info("Delivery cycle completed", "items", len(items), "sent", sent, "duration", t.GetDuration())
	} else {
		slog.Info("No new items to deliver", "items", len(items), "duration", t.GetDuration())
	}

	return nil
}
