package database

import (
	"time"
)

// ReconcileStats reports what a snapshot reconciliation did.
type ReconcileStats struct {
	Inserted int
	Updated  int
	Removed  int
}

// Total returns the number of rows present after reconciliation.
func (s ReconcileStats) Total() int {
	return s.Inserted + s.Updated
}

// EpisodeKey identifies one episode of a show for exemption lookups.
// The show name is lower-cased.
type EpisodeKey struct {
	Show    string
	Season  int
	Episode int
}

// WhitelistSets are the normalized O(1)-membership lookup sets the analysis
// engine filters with. Names are lower-cased. Expired entries are already
// excluded.
type WhitelistSets struct {
	Names           map[string]struct{}
	FrenchAudioOnly map[string]struct{}
	FrenchSubsOnly  map[string]struct{}
	LanguageExempt  map[string]struct{}
	Episodes        map[EpisodeKey]struct{}
}

type MediaRepository interface {
	GetItems(userID string) ([]MediaItem, error)
	GetItemCount(userID string) (int, error)

	// ReplaceUserItems reconciles the user's cached items against a fresh
	// snapshot inside one transaction: insert absent, update present, prune
	// anything not in the snapshot.
	ReplaceUserItems(userID string, fresh []MediaItem) (ReconcileStats, error)

	DeleteItem(userID, externalID string) (bool, error)
}

type RequestRepository interface {
	GetRequests(userID string) ([]Request, error)
	GetRequestCount(userID string) (int, error)

	ReplaceUserRequests(userID string, fresh []Request) (ReconcileStats, error)
}

type WhitelistRepository interface {
	GetEntries(userID, kind string) ([]WhitelistEntry, error)

	// GetSets returns the lookup sets for a user as of now, excluding
	// entries whose expiry is in the past.
	GetSets(userID string, now time.Time) (WhitelistSets, error)

	// Add inserts an entry; adding a duplicate is a no-op reported via the
	// skipped return, not an error.
	Add(entry WhitelistEntry) (skipped bool, err error)

	// BulkAdd inserts a batch in one transaction, reporting how many rows
	// were new and how many were duplicates.
	BulkAdd(entries []WhitelistEntry) (added, skipped int, err error)

	Remove(userID, entryID string) (bool, error)
}

type ThresholdsRepository interface {
	// Get returns nil when the user has no stored overrides.
	Get(userID string) (*UserThresholds, error)
	Upsert(t UserThresholds) error
}

type SyncStatusRepository interface {
	// Get returns nil when the user has never been synced.
	Get(userID string) (*SyncStatus, error)
	Upsert(status SyncStatus) error
}
