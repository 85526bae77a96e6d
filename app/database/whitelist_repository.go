package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WhitelistEntryRepository handles database operations for whitelist entries
type WhitelistEntryRepository struct {
	db *DB
}

var _ WhitelistRepository = (*WhitelistEntryRepository)(nil)

// NewWhitelistEntryRepository creates a new whitelist repository
func NewWhitelistEntryRepository(db *DB) *WhitelistEntryRepository {
	return &WhitelistEntryRepository{db: db}
}

// GetEntries returns a user's entries, expired included. An empty kind
// means all kinds.
func (r *WhitelistEntryRepository) GetEntries(userID, kind string) ([]WhitelistEntry, error) {
	query := `
		SELECT id, user_id, kind, name, show_name, season, episode, added_at, expires_at
		FROM whitelist_entries
		WHERE user_id = ?`
	args := []any{userID}

	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY added_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get whitelist entries: %w", err)
	}
	defer rows.Close()

	var entries []WhitelistEntry
	for rows.Next() {
		var e WhitelistEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Name, &e.ShowName,
			&e.Season, &e.Episode, &e.AddedAt, &e.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan whitelist row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating whitelist rows: %w", err)
	}

	return entries, nil
}

// GetSets builds the normalized lookup sets for a user as of now. Entries
// whose expiry timestamp is in the past are excluded without being deleted
// (soft expiry).
func (r *WhitelistEntryRepository) GetSets(userID string, now time.Time) (WhitelistSets, error) {
	sets := WhitelistSets{
		Names:           make(map[string]struct{}),
		FrenchAudioOnly: make(map[string]struct{}),
		FrenchSubsOnly:  make(map[string]struct{}),
		LanguageExempt:  make(map[string]struct{}),
		Episodes:        make(map[EpisodeKey]struct{}),
	}

	rows, err := r.db.Query(`
		SELECT kind, name, show_name, season, episode
		FROM whitelist_entries
		WHERE user_id = ?
		  AND (expires_at IS NULL OR expires_at > ?)
	`, userID, now)
	if err != nil {
		return sets, fmt.Errorf("failed to get whitelist sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, name, show string
		var season, episode int
		if err := rows.Scan(&kind, &name, &show, &season, &episode); err != nil {
			return sets, fmt.Errorf("failed to scan whitelist set row: %w", err)
		}

		key := normalizeKey(name)
		switch kind {
		case WhitelistContentName:
			sets.Names[key] = struct{}{}
		case WhitelistFrenchAudioOnly:
			sets.FrenchAudioOnly[key] = struct{}{}
		case WhitelistFrenchSubsOnly:
			sets.FrenchSubsOnly[key] = struct{}{}
		case WhitelistLanguageExempt:
			sets.LanguageExempt[key] = struct{}{}
		case WhitelistEpisode:
			sets.Episodes[EpisodeKey{Show: normalizeKey(show), Season: season, Episode: episode}] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return sets, fmt.Errorf("error iterating whitelist set rows: %w", err)
	}

	return sets, nil
}

// Add inserts an entry. Adding a duplicate match key for the same user and
// kind is an idempotent no-op, reported as skipped.
func (r *WhitelistEntryRepository) Add(entry WhitelistEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	entry.Name = normalizeKey(entry.Name)
	entry.ShowName = normalizeKey(entry.ShowName)

	res, err := r.db.Exec(`
		INSERT INTO whitelist_entries (id, user_id, kind, name, show_name, season, episode, added_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, kind, name, show_name, season, episode) DO NOTHING
	`, entry.ID, entry.UserID, entry.Kind, entry.Name, entry.ShowName,
		entry.Season, entry.Episode, entry.AddedAt, entry.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to add whitelist entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 0, nil
}

// BulkAdd inserts a batch of entries in one transaction. Duplicates within
// the batch or against existing rows are counted as skipped, matching the
// single-entry Add semantics.
func (r *WhitelistEntryRepository) BulkAdd(entries []WhitelistEntry) (added, skipped int, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.AddedAt.IsZero() {
			entry.AddedAt = now
		}
		entry.Name = normalizeKey(entry.Name)
		entry.ShowName = normalizeKey(entry.ShowName)

		res, err := tx.Exec(`
			INSERT INTO whitelist_entries (id, user_id, kind, name, show_name, season, episode, added_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, kind, name, show_name, season, episode) DO NOTHING
		`, entry.ID, entry.UserID, entry.Kind, entry.Name, entry.ShowName,
			entry.Season, entry.Episode, entry.AddedAt, entry.ExpiresAt)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to add whitelist entry: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			skipped++
		} else {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit bulk add: %w", err)
	}

	return added, skipped, nil
}

// Remove deletes an entry by id, scoped to the owning user.
func (r *WhitelistEntryRepository) Remove(userID, entryID string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM whitelist_entries WHERE user_id = ? AND id = ?", userID, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to remove whitelist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
