package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	DefaultPollInterval    = 3800 * time.Second
	DefaultCleanupInterval = 24 * time.Hour
	DefaultPollDelay       = 10 * time.Second
	DefaultCleanupDelay    = 60 * time.Second
	DefaultTaskTimeout     = 30 * time.Minute
)

type SchedulerOptions struct {
	PollInterval    time.Duration
	CleanupInterval time.Duration
	// Delays before the first poll and the first cleanup after Start.
	PollDelay    time.Duration
	CleanupDelay time.Duration
	WorkerCount  int
	TaskTimeout  time.Duration
}

type Scheduler struct {
	options        SchedulerOptions
	newPollTask    func() TaskInterface
	newCleanupTask func() TaskInterface
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

func NewScheduler(options SchedulerOptions, newPollTask, newCleanupTask func() TaskInterface) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.CleanupInterval <= 0 {
		options.CleanupInterval = DefaultCleanupInterval
	}
	if options.WorkerCount <= 0 {
		options.WorkerCount = 1
	}
	if options.PollDelay <= 0 {
		options.PollDelay = DefaultPollDelay
	}
	if options.CleanupDelay <= 0 {
		options.CleanupDelay = DefaultCleanupDelay
	}
	if options.TaskTimeout <= 0 {
		options.TaskTimeout = DefaultTaskTimeout
	}

	return &Scheduler{
		options:        options,
		newPollTask:    newPollTask,
		newCleanupTask: newCleanupTask,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.options.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		pollTimer := time.NewTimer(s.options.PollDelay)
		defer pollTimer.Stop()
		cleanupTimer := time.NewTimer(s.options.CleanupDelay)
		defer cleanupTimer.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-pollTimer.C:
				s.enqueue(s.newPollTask())
				pollTimer.Reset(s.options.PollInterval)
			case <-cleanupTimer.C:
				s.enqueue(s.newCleanupTask())
				cleanupTimer.Reset(s.options.CleanupInterval)
			}
		}
	}()

	slog.Debug("Scheduler started", "workers", s.options.WorkerCount, "poll_interval", s.options.PollInterval, "cleanup_interval", s.options.CleanupInterval)
}

// Stop cancels running tasks and waits for workers to exit. Tasks still
// queued are dropped.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueue(task TaskInterface) {
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs a task once. Failed tasks are not retried; the next
// tick schedules a fresh one.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.options.TaskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
		return
	}

	slog.Debug("Worker task completed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration())
}
