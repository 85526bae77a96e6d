package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaItemRepository handles database operations for cached media items
type MediaItemRepository struct {
	db *DB
}

var _ MediaRepository = (*MediaItemRepository)(nil)

// NewMediaItemRepository creates a new media item repository
func NewMediaItemRepository(db *DB) *MediaItemRepository {
	return &MediaItemRepository{db: db}
}

// GetItems returns all cached items for a user
func (r *MediaItemRepository) GetItems(userID string) ([]MediaItem, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, external_id, name, kind, production_year,
		       date_created, last_played_at, played, play_count, size_bytes,
		       COALESCE(file_path, ''), payload, created_at, updated_at
		FROM media_items
		WHERE user_id = ?
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get media items: %w", err)
	}
	defer rows.Close()

	var items []MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media item rows: %w", err)
	}

	return items, nil
}

// GetItemCount returns the number of cached items for a user
func (r *MediaItemRepository) GetItemCount(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM media_items WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get media item count: %w", err)
	}
	return count, nil
}

// ReplaceUserItems reconciles the user's cached items against a fresh
// snapshot. The whole reconciliation runs in one transaction so that a
// failure leaves the prior cache intact instead of partially pruned.
func (r *MediaItemRepository) ReplaceUserItems(userID string, fresh []MediaItem) (ReconcileStats, error) {
	var stats ReconcileStats

	tx, err := r.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := existingKeys(tx, "media_items", userID)
	if err != nil {
		return stats, err
	}

	now := time.Now().UTC()
	freshKeys := make(map[string]struct{}, len(fresh))

	for _, item := range fresh {
		if item.ExternalID == "" {
			continue
		}
		freshKeys[item.ExternalID] = struct{}{}

		payload, err := json.Marshal(item.Payload)
		if err != nil {
			return stats, fmt.Errorf("failed to encode item payload: %w", err)
		}

		if _, ok := existing[item.ExternalID]; ok {
			_, err = tx.Exec(`
				UPDATE media_items
				SET name = ?, kind = ?, production_year = ?, date_created = ?,
				    last_played_at = ?, played = ?, play_count = ?,
				    size_bytes = ?, file_path = ?, payload = ?, updated_at = ?
				WHERE user_id = ? AND external_id = ?
			`, item.Name, item.Kind, item.ProductionYear, item.DateCreated,
				item.LastPlayedAt, item.Played, item.PlayCount,
				item.SizeBytes, item.FilePath, string(payload), now,
				userID, item.ExternalID)
			if err != nil {
				return stats, fmt.Errorf("failed to update media item: %w", err)
			}
			stats.Updated++
		} else {
			_, err = tx.Exec(`
				INSERT INTO media_items (
					id, user_id, external_id, name, kind, production_year,
					date_created, last_played_at, played, play_count,
					size_bytes, file_path, payload, created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.NewString(), userID, item.ExternalID, item.Name, item.Kind,
				item.ProductionYear, item.DateCreated, item.LastPlayedAt,
				item.Played, item.PlayCount, item.SizeBytes, item.FilePath,
				string(payload), now, now)
			if err != nil {
				return stats, fmt.Errorf("failed to insert media item: %w", err)
			}
			stats.Inserted++
		}
	}

	// Hard prune: the cache reflects the latest-known external state, never
	// a historical union.
	for externalID, id := range existing {
		if _, ok := freshKeys[externalID]; ok {
			continue
		}
		if _, err := tx.Exec("DELETE FROM media_items WHERE id = ?", id); err != nil {
			return stats, fmt.Errorf("failed to prune media item: %w", err)
		}
		stats.Removed++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	return stats, nil
}

// DeleteItem removes a single cached item via an explicit deletion action
func (r *MediaItemRepository) DeleteItem(userID, externalID string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM media_items WHERE user_id = ? AND external_id = ?", userID, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to delete media item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// existingKeys maps external_id to database id for one user's rows, inside
// the reconciliation transaction.
func existingKeys(tx *sql.Tx, table, userID string) (map[string]string, error) {
	rows, err := tx.Query("SELECT external_id, id FROM "+table+" WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing keys: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	for rows.Next() {
		var externalID, id string
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, fmt.Errorf("failed to scan existing key: %w", err)
		}
		existing[externalID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing keys: %w", err)
	}

	return existing, nil
}

func scanMediaItem(rows *sql.Rows) (MediaItem, error) {
	var item MediaItem
	var payload string

	err := rows.Scan(
		&item.ID, &item.UserID, &item.ExternalID, &item.Name, &item.Kind,
		&item.ProductionYear, &item.DateCreated, &item.LastPlayedAt,
		&item.Played, &item.PlayCount, &item.SizeBytes, &item.FilePath,
		&payload, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return item, fmt.Errorf("failed to scan media item row: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &item.Payload); err != nil {
		return item, fmt.Errorf("failed to decode item payload: %w", err)
	}

	return item, nil
}
