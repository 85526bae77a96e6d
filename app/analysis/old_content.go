package analysis

import (
	"strings"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// OldContentResult is the old-and-unwatched classification. ProtectedCount
// counts items that matched the age rules but were kept by a name
// whitelist entry; they are not in Items.
type OldContentResult struct {
	Items          []database.MediaItem
	ProtectedCount int
	TotalSizeBytes int64
}

// OldUnwatched flags items added before the old-content cutoff that nobody
// has watched since that cutoff. The minimum-age cutoff is a grace period
// for freshly added content and is checked independently.
func OldUnwatched(items []database.MediaItem, t Thresholds, sets database.WhitelistSets, now time.Time) OldContentResult {
	oldCutoff := now.AddDate(0, -t.OldContentMonths, 0)
	minAgeCutoff := now.AddDate(0, -t.MinAgeMonths, 0)

	var result OldContentResult
	for _, item := range items {
		if item.DateCreated.IsZero() || !item.DateCreated.Before(oldCutoff) {
			continue
		}
		if !item.DateCreated.Before(minAgeCutoff) {
			continue
		}
		if watchedSince(item, oldCutoff) {
			continue
		}

		if _, ok := sets.Names[normalizeName(item.Name)]; ok {
			result.ProtectedCount++
			continue
		}

		result.Items = append(result.Items, item)
		result.TotalSizeBytes += item.SizeBytes
	}
	return result
}

// watchedSince reports whether the item has been played after the cutoff.
// An item marked played without a last-played timestamp counts as watched:
// the source lost the date, not the view.
func watchedSince(item database.MediaItem, cutoff time.Time) bool {
	if item.LastPlayedAt != nil {
		return item.LastPlayedAt.After(cutoff)
	}
	return item.Played
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
