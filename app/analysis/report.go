package analysis

import (
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// Report is one full analysis pass over a user's cached library and
// requests. Totals are computed over exactly the flagged sets.
type Report struct {
	GeneratedAt time.Time

	OldContent     OldContentResult
	LargeMovies    []database.MediaItem
	LargeSeasons   []SeasonFinding
	Languages      LanguageResult
	Unavailable    []database.Request
	InProgress     []SeasonProgress
	NewlyAvailable []AvailabilityGroup

	LargeMoviesTotalBytes int64
}

// Run executes every classification against the given snapshot. It reads
// nothing but its arguments, so callers control the clock.
func Run(items []database.MediaItem, requests []database.Request, t Thresholds, sets database.WhitelistSets, opts RequestOptions, now time.Time) Report {
	report := Report{
		GeneratedAt:    now,
		OldContent:     OldUnwatched(items, t, sets, now),
		LargeMovies:    LargeMovies(items, t),
		LargeSeasons:   LargeSeasons(items, t),
		Languages:      MissingLanguages(items, sets),
		Unavailable:    UnavailableRequests(requests, opts, now),
		InProgress:     InProgressSeasons(requests),
		NewlyAvailable: RecentlyAvailable(requests, t.RecentlyAvailableDays, now),
	}
	report.LargeMoviesTotalBytes = TotalSize(report.LargeMovies)
	return report
}
