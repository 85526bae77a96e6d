package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

var _ SchedulerInterface = (*Scheduler)(nil)

// SchedulerOptions carry the process configuration the scheduler needs,
// injected at construction.
type SchedulerOptions struct {
	Interval     time.Duration // how often the due check runs
	SyncInterval time.Duration // how stale a user's cache may get
	WorkerCount  int
}

// Scheduler drives periodic syncs: a ticker checks which users are due and
// enqueues one SyncUserTask per due user onto a bounded queue drained by a
// worker pool. Failed tasks are retried with exponential backoff capped at
// 30 seconds.
type Scheduler struct {
	orchestrator *Orchestrator
	configCache  *users.ConfigCache
	syncRepo     database.SyncStatusRepository
	interval     time.Duration
	syncInterval time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           gosync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(orchestrator *Orchestrator, configCache *users.ConfigCache,
	syncRepo database.SyncStatusRepository, opts SchedulerOptions) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		orchestrator: orchestrator,
		configCache:  configCache,
		syncRepo:     syncRepo,
		interval:     opts.Interval,
		syncInterval: opts.SyncInterval,
		workerCount:  opts.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDueTasks schedules a sync for every syncable user whose last
// successful cycle is older than the sync interval. Users that have never
// synced are always due.
func (s *Scheduler) enqueueDueTasks() {
	userConfigs := s.configCache.GetSyncableConfigs()
	if len(userConfigs) == 0 {
		slog.Debug("No syncable user configurations found")
		return
	}

	slog.Debug("Checking users for due syncs", "count", len(userConfigs))

	now := time.Now().UTC()
	for _, userConfig := range userConfigs {
		status, err := s.syncRepo.Get(userConfig.Name)
		if err != nil {
			slog.Warn("Failed to get sync status, skipping", "user", userConfig.Name, "error", err)
			continue
		}

		if status != nil && status.LastSyncAt != nil && now.Sub(*status.LastSyncAt) < s.syncInterval {
			slog.Debug("User not due for sync yet", "user", userConfig.Name, "last_sync_at", status.LastSyncAt)
			continue
		}

		task := NewSyncUserTask(userConfig.Name, s.orchestrator)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue SyncUserTask", "user", userConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "user", task.GetUserName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
