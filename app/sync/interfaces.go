package sync

import (
	"context"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

// LibrarySource lists a user's media items from their library server.
type LibrarySource interface {
	ValidateConnection(ctx context.Context, cfg users.SourceConfig) error
	ListItems(ctx context.Context, cfg users.SourceConfig) ([]database.MediaItem, error)
}

// RequestSource lists a user's acquisition requests from their request
// manager.
type RequestSource interface {
	ValidateConnection(ctx context.Context, cfg users.SourceConfig) error
	ListRequests(ctx context.Context, cfg users.SourceConfig) ([]database.Request, error)
}

// Notifier delivers a message to a user. Delivery is best effort; the
// return value only feeds logging.
type Notifier interface {
	Notify(recipient, subject, body string) bool
}

// SchedulerInterface is the background sync loop as seen by main and the
// API layer.
//
//	scheduler := NewScheduler(orchestrator, configCache, syncRepo, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
type SchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
