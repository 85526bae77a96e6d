package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

// Sync phases, reported through Result.Phase so callers can tell how far a
// cycle got before it stopped.
const (
	PhaseNotConfigured = "not_configured"
	PhaseFetching      = "fetching"
	PhaseReconciling   = "reconciling"
	PhaseCompleted     = "completed"
	PhaseFailed        = "failed"
)

// Result describes one sync cycle. Started distinguishes a cycle that
// could not begin (unknown user, no library source) from one that ran and
// failed.
type Result struct {
	UserName string
	Started  bool
	Phase    string

	ItemStats    database.ReconcileStats
	RequestStats database.ReconcileStats

	// RequestsSkipped is set when the user has no request source
	// configured or the request fetch failed after the library synced.
	RequestsSkipped bool

	Duration time.Duration
	Err      error
}

// Orchestrator runs the full sync cycle for one user: fetch snapshots from
// the external sources, then reconcile them into the cache. The library
// source is required; the request source is best effort. SyncUser never
// panics and never returns an error for a failed cycle: failures land in
// the status row and the Result.
type Orchestrator struct {
	configCache *users.ConfigCache
	library     LibrarySource
	requests    RequestSource
	mediaRepo   database.MediaRepository
	requestRepo database.RequestRepository
	syncRepo    database.SyncStatusRepository
	notifier    Notifier
}

func NewOrchestrator(configCache *users.ConfigCache, library LibrarySource, requests RequestSource,
	mediaRepo database.MediaRepository, requestRepo database.RequestRepository,
	syncRepo database.SyncStatusRepository, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		configCache: configCache,
		library:     library,
		requests:    requests,
		mediaRepo:   mediaRepo,
		requestRepo: requestRepo,
		syncRepo:    syncRepo,
		notifier:    notifier,
	}
}

func (o *Orchestrator) SyncUser(ctx context.Context, userName string) Result {
	started := time.Now()
	result := Result{UserName: userName}

	userConfig, err := o.configCache.GetConfig(userName)
	if err != nil {
		result.Phase = PhaseNotConfigured
		result.Err = err
		if !errors.Is(err, users.ErrNotConfigured) {
			slog.Error("Failed to load user configuration", "user", userName, "error", err)
		}
		return result
	}

	result.Started = true
	result.Phase = PhaseFetching

	items, err := o.library.ListItems(ctx, userConfig.Library)
	if err != nil {
		return o.fail(result, userConfig, started, fmt.Errorf("library fetch failed: %w", err))
	}

	var requests []database.Request
	requestsSkipped := !userConfig.HasRequests()
	if !requestsSkipped {
		requests, err = o.requests.ListRequests(ctx, userConfig.Requests)
		if err != nil {
			// Library data is still good; sync it and record the partial
			// outcome instead of discarding the cycle.
			slog.Warn("Request fetch failed, syncing library only", "user", userName, "error", err)
			requestsSkipped = true
			requests = nil
		}
	}

	result.Phase = PhaseReconciling

	itemStats, err := o.mediaRepo.ReplaceUserItems(userName, items)
	if err != nil {
		return o.fail(result, userConfig, started, fmt.Errorf("item reconciliation failed: %w", err))
	}
	result.ItemStats = itemStats

	if !requestsSkipped {
		requestStats, err := o.requestRepo.ReplaceUserRequests(userName, requests)
		if err != nil {
			return o.fail(result, userConfig, started, fmt.Errorf("request reconciliation failed: %w", err))
		}
		result.RequestStats = requestStats
	}
	result.RequestsSkipped = requestsSkipped

	result.Phase = PhaseCompleted
	result.Duration = time.Since(started)

	now := time.Now().UTC()
	status := database.SyncStatus{
		UserID:         userName,
		LastSyncAt:     &now,
		Outcome:        database.OutcomeSuccess,
		ItemsSynced:    itemStats.Total(),
		RequestsSynced: result.RequestStats.Total(),
	}
	if err := o.syncRepo.Upsert(status); err != nil {
		slog.Error("Failed to record sync status", "user", userName, "error", err)
	}

	slog.Info("Task completed",
		"type", "SyncUser",
		"user", userName,
		"duration", result.Duration,
		"items", itemStats.Total(),
		"items_removed", itemStats.Removed,
		"requests", result.RequestStats.Total(),
		"requests_skipped", requestsSkipped)

	return result
}

// fail records a failed cycle and fires the user notification. The
// existing cache is left untouched so analysis keeps serving the last good
// snapshot.
func (o *Orchestrator) fail(result Result, userConfig *users.Config, started time.Time, err error) Result {
	result.Phase = PhaseFailed
	result.Err = err
	result.Duration = time.Since(started)

	slog.Error("Sync cycle failed", "user", result.UserName, "phase", result.Phase, "error", err)

	now := time.Now().UTC()
	status := database.SyncStatus{
		UserID:     result.UserName,
		LastSyncAt: &now,
		Outcome:    database.OutcomeFailed,
		LastError:  err.Error(),
	}
	if upsertErr := o.syncRepo.Upsert(status); upsertErr != nil {
		slog.Error("Failed to record sync status", "user", result.UserName, "error", upsertErr)
	}

	if o.notifier != nil && userConfig.Notify.Recipient != "" {
		go o.notifier.Notify(userConfig.Notify.Recipient,
			"Media sync failed",
			fmt.Sprintf("Sync for %s failed: %s", result.UserName, err.Error()))
	}

	return result
}
