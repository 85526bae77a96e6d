package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncStatusRowRepository handles database operations for per-user sync status
type SyncStatusRowRepository struct {
	db *DB
}

var _ SyncStatusRepository = (*SyncStatusRowRepository)(nil)

// NewSyncStatusRowRepository creates a new sync status repository
func NewSyncStatusRowRepository(db *DB) *SyncStatusRowRepository {
	return &SyncStatusRowRepository{db: db}
}

// Get returns the sync status for a user, or nil when never synced.
func (r *SyncStatusRowRepository) Get(userID string) (*SyncStatus, error) {
	var s SyncStatus
	err := r.db.QueryRow(`
		SELECT user_id, last_sync_at, COALESCE(outcome, ''), items_synced,
		       requests_synced, COALESCE(last_error, ''), updated_at
		FROM sync_status
		WHERE user_id = ?
	`, userID).Scan(&s.UserID, &s.LastSyncAt, &s.Outcome, &s.ItemsSynced,
		&s.RequestsSynced, &s.LastError, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	return &s, nil
}

// Upsert overwrites the user's sync status row. The record is a singleton
// per user and is never historized.
func (r *SyncStatusRowRepository) Upsert(status SyncStatus) error {
	_, err := r.db.Exec(`
		INSERT INTO sync_status (
			user_id, last_sync_at, outcome, items_synced,
			requests_synced, last_error, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			last_sync_at = excluded.last_sync_at,
			outcome = excluded.outcome,
			items_synced = excluded.items_synced,
			requests_synced = excluded.requests_synced,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, status.UserID, status.LastSyncAt, status.Outcome, status.ItemsSynced,
		status.RequestsSynced, status.LastError, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert sync status: %w", err)
	}

	return nil
}
