package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestCacheRepository handles database operations for cached acquisition requests
type RequestCacheRepository struct {
	db *DB
}

var _ RequestRepository = (*RequestCacheRepository)(nil)

// NewRequestCacheRepository creates a new request repository
func NewRequestCacheRepository(db *DB) *RequestCacheRepository {
	return &RequestCacheRepository{db: db}
}

// GetRequests returns all cached requests for a user
func (r *RequestCacheRepository) GetRequests(userID string) ([]Request, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, external_id, title, media_kind, status,
		       provider_id, COALESCE(requested_by, ''), requested_at,
		       release_date, available_at, seasons, created_at, updated_at
		FROM requests
		WHERE user_id = ?
		ORDER BY requested_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}

	return requests, nil
}

// GetRequestCount returns the number of cached requests for a user
func (r *RequestCacheRepository) GetRequestCount(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM requests WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get request count: %w", err)
	}
	return count, nil
}

// ReplaceUserRequests reconciles the user's cached requests against a fresh
// snapshot inside one transaction, mirroring ReplaceUserItems.
func (r *RequestCacheRepository) ReplaceUserRequests(userID string, fresh []Request) (ReconcileStats, error) {
	var stats ReconcileStats

	tx, err := r.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := existingKeys(tx, "requests", userID)
	if err != nil {
		return stats, err
	}

	now := time.Now().UTC()
	freshKeys := make(map[string]struct{}, len(fresh))

	for _, req := range fresh {
		if req.ExternalID == "" {
			continue
		}
		freshKeys[req.ExternalID] = struct{}{}

		seasons, err := json.Marshal(req.Seasons)
		if err != nil {
			return stats, fmt.Errorf("failed to encode season breakdown: %w", err)
		}

		if _, ok := existing[req.ExternalID]; ok {
			_, err = tx.Exec(`
				UPDATE requests
				SET title = ?, media_kind = ?, status = ?, provider_id = ?,
				    requested_by = ?, requested_at = ?, release_date = ?,
				    available_at = ?, seasons = ?, updated_at = ?
				WHERE user_id = ? AND external_id = ?
			`, req.Title, req.MediaKind, req.Status, req.ProviderID,
				req.RequestedBy, req.RequestedAt, req.ReleaseDate,
				req.AvailableAt, string(seasons), now,
				userID, req.ExternalID)
			if err != nil {
				return stats, fmt.Errorf("failed to update request: %w", err)
			}
			stats.Updated++
		} else {
			_, err = tx.Exec(`
				INSERT INTO requests (
					id, user_id, external_id, title, media_kind, status,
					provider_id, requested_by, requested_at, release_date,
					available_at, seasons, created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.NewString(), userID, req.ExternalID, req.Title,
				req.MediaKind, req.Status, req.ProviderID, req.RequestedBy,
				req.RequestedAt, req.ReleaseDate, req.AvailableAt,
				string(seasons), now, now)
			if err != nil {
				return stats, fmt.Errorf("failed to insert request: %w", err)
			}
			stats.Inserted++
		}
	}

	for externalID, id := range existing {
		if _, ok := freshKeys[externalID]; ok {
			continue
		}
		if _, err := tx.Exec("DELETE FROM requests WHERE id = ?", id); err != nil {
			return stats, fmt.Errorf("failed to prune request: %w", err)
		}
		stats.Removed++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	return stats, nil
}

func scanRequest(rows *sql.Rows) (Request, error) {
	var req Request
	var seasons string

	err := rows.Scan(
		&req.ID, &req.UserID, &req.ExternalID, &req.Title, &req.MediaKind,
		&req.Status, &req.ProviderID, &req.RequestedBy, &req.RequestedAt,
		&req.ReleaseDate, &req.AvailableAt, &seasons,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return req, fmt.Errorf("failed to scan request row: %w", err)
	}

	if err := json.Unmarshal([]byte(seasons), &req.Seasons); err != nil {
		return req, fmt.Errorf("failed to decode season breakdown: %w", err)
	}

	return req, nil
}
