package sync

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeSyncUser TaskType = "sync_user"
)

const (
	DefaultMaxRetries = 3
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetUserName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	UserName   string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetUserName() string {
	return t.UserName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, userName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		UserName:   userName,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}

// SyncUserTask runs one sync cycle for one user through the orchestrator.
// The orchestrator reports failures through its result and the status row,
// so Execute only surfaces errors the scheduler should retry.
type SyncUserTask struct {
	Task
	orchestrator *Orchestrator
}

func NewSyncUserTask(userName string, orchestrator *Orchestrator) *SyncUserTask {
	return &SyncUserTask{
		Task:         NewTask(TaskTypeSyncUser, userName),
		orchestrator: orchestrator,
	}
}

func (t *SyncUserTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.orchestrator.SyncUser(ctx, t.UserName)
	if result.Phase == PhaseFailed {
		return result.Err
	}
	return nil
}
