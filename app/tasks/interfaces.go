package tasks

import (
	"context"

	"github.com/lysyi3m/rss-relay/app/feed"
)

// TaskSchedulerInterface is what the application and the admin API use to
// run background work.
//
//	scheduler := NewScheduler(options, newPollTask, newCleanupTask)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(newPollTask())
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type FeedRetriever interface {
	FetchAll(ctx context.Context, urls []string) []feed.Item
}

type CycleRunner interface {
	RunCycle(ctx context.Context, items []feed.Item) int
}
