package analysis

import (
	"testing"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func testThresholds() Thresholds {
	return Thresholds{
		OldContentMonths:      12,
		MinAgeMonths:          3,
		LargeMovieSizeGB:      13,
		LargeSeasonSizeGB:     25,
		RecentlyAvailableDays: 7,
	}
}

func emptySets() database.WhitelistSets {
	return database.WhitelistSets{
		Names:           map[string]struct{}{},
		FrenchAudioOnly: map[string]struct{}{},
		FrenchSubsOnly:  map[string]struct{}{},
		LanguageExempt:  map[string]struct{}{},
		Episodes:        map[database.EpisodeKey]struct{}{},
	}
}

func itemCreatedMonthsAgo(name string, months int) database.MediaItem {
	return database.MediaItem{
		Name:        name,
		Kind:        database.KindMovie,
		DateCreated: testNow.AddDate(0, -months, 0),
		SizeBytes:   1 << 30,
	}
}

func TestOldUnwatchedFlagsOldNeverPlayed(t *testing.T) {
	items := []database.MediaItem{itemCreatedMonthsAgo("Old Movie", 14)}

	result := OldUnwatched(items, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 flagged item, got %d", len(result.Items))
	}
	if result.Items[0].Name != "Old Movie" {
		t.Errorf("Expected 'Old Movie', got '%s'", result.Items[0].Name)
	}
	if result.TotalSizeBytes != 1<<30 {
		t.Errorf("Expected total size %d, got %d", int64(1<<30), result.TotalSizeBytes)
	}
}

func TestOldUnwatchedSkipsRecentContent(t *testing.T) {
	items := []database.MediaItem{
		itemCreatedMonthsAgo("Ten Months Old", 10),
		itemCreatedMonthsAgo("Two Months Old", 2),
	}

	result := OldUnwatched(items, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 0 {
		t.Errorf("Expected no flagged items, got %d", len(result.Items))
	}
}

func TestOldUnwatchedSkipsRecentlyPlayed(t *testing.T) {
	played := testNow.AddDate(0, -1, 0)
	item := itemCreatedMonthsAgo("Watched Movie", 14)
	item.Played = true
	item.PlayCount = 2
	item.LastPlayedAt = &played

	result := OldUnwatched([]database.MediaItem{item}, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 0 {
		t.Errorf("Recently played item should not be flagged, got %d items", len(result.Items))
	}
}

func TestOldUnwatchedFlagsStalePlay(t *testing.T) {
	played := testNow.AddDate(0, -15, 0)
	item := itemCreatedMonthsAgo("Long Forgotten", 20)
	item.Played = true
	item.LastPlayedAt = &played

	result := OldUnwatched([]database.MediaItem{item}, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 1 {
		t.Errorf("Item last played before the cutoff should be flagged, got %d items", len(result.Items))
	}
}

func TestOldUnwatchedPlayedWithoutTimestamp(t *testing.T) {
	item := itemCreatedMonthsAgo("Played No Date", 14)
	item.Played = true

	result := OldUnwatched([]database.MediaItem{item}, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 0 {
		t.Errorf("Played item without a last-played date should not be flagged, got %d items", len(result.Items))
	}
}

func TestOldUnwatchedMinAgeGracePeriod(t *testing.T) {
	// With a short old-content threshold the grace period still protects
	// freshly added items.
	thresholds := testThresholds()
	thresholds.OldContentMonths = 1

	items := []database.MediaItem{itemCreatedMonthsAgo("Fresh", 2)}

	result := OldUnwatched(items, thresholds, emptySets(), testNow)

	if len(result.Items) != 0 {
		t.Errorf("Item within the grace period should not be flagged, got %d items", len(result.Items))
	}
}

func TestOldUnwatchedWhitelistProtects(t *testing.T) {
	sets := emptySets()
	sets.Names["protected movie"] = struct{}{}

	items := []database.MediaItem{
		itemCreatedMonthsAgo("Protected Movie", 14),
		itemCreatedMonthsAgo("Unprotected Movie", 14),
	}

	result := OldUnwatched(items, testThresholds(), sets, testNow)

	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 flagged item, got %d", len(result.Items))
	}
	if result.Items[0].Name != "Unprotected Movie" {
		t.Errorf("Expected 'Unprotected Movie', got '%s'", result.Items[0].Name)
	}
	if result.ProtectedCount != 1 {
		t.Errorf("Expected protected count 1, got %d", result.ProtectedCount)
	}
	if result.TotalSizeBytes != 1<<30 {
		t.Errorf("Protected item size should not be counted, got %d", result.TotalSizeBytes)
	}
}

func TestOldUnwatchedSkipsZeroDateCreated(t *testing.T) {
	items := []database.MediaItem{{Name: "No Date", Kind: database.KindMovie}}

	result := OldUnwatched(items, testThresholds(), emptySets(), testNow)

	if len(result.Items) != 0 {
		t.Errorf("Item without a creation date should not be flagged, got %d items", len(result.Items))
	}
}
