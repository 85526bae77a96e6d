package database

import (
	"database/sql"
	"fmt"
	"time"
)

// UserThresholdsRepository handles database operations for per-user thresholds
type UserThresholdsRepository struct {
	db *DB
}

var _ ThresholdsRepository = (*UserThresholdsRepository)(nil)

// NewUserThresholdsRepository creates a new thresholds repository
func NewUserThresholdsRepository(db *DB) *UserThresholdsRepository {
	return &UserThresholdsRepository{db: db}
}

// Get returns the stored thresholds for a user, or nil when the user relies
// on the process-wide defaults.
func (r *UserThresholdsRepository) Get(userID string) (*UserThresholds, error) {
	var t UserThresholds
	err := r.db.QueryRow(`
		SELECT user_id, old_content_months, min_age_months,
		       large_movie_size_gb, large_season_size_gb,
		       recently_available_days, updated_at
		FROM user_thresholds
		WHERE user_id = ?
	`, userID).Scan(&t.UserID, &t.OldContentMonths, &t.MinAgeMonths,
		&t.LargeMovieSizeGB, &t.LargeSeasonSizeGB,
		&t.RecentlyAvailableDays, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user thresholds: %w", err)
	}

	return &t, nil
}

// Upsert stores a user's threshold overrides
func (r *UserThresholdsRepository) Upsert(t UserThresholds) error {
	_, err := r.db.Exec(`
		INSERT INTO user_thresholds (
			user_id, old_content_months, min_age_months,
			large_movie_size_gb, large_season_size_gb,
			recently_available_days, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			old_content_months = excluded.old_content_months,
			min_age_months = excluded.min_age_months,
			large_movie_size_gb = excluded.large_movie_size_gb,
			large_season_size_gb = excluded.large_season_size_gb,
			recently_available_days = excluded.recently_available_days,
			updated_at = excluded.updated_at
	`, t.UserID, t.OldContentMonths, t.MinAgeMonths, t.LargeMovieSizeGB,
		t.LargeSeasonSizeGB, t.RecentlyAvailableDays, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert user thresholds: %w", err)
	}

	return nil
}
