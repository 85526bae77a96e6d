package analysis

import (
	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

// Thresholds are the resolved per-user analysis thresholds. All values are
// positive; resolution clamps nothing because both the process config and
// the user config validate their ranges.
type Thresholds struct {
	OldContentMonths      int
	MinAgeMonths          int
	LargeMovieSizeGB      int
	LargeSeasonSizeGB     int
	RecentlyAvailableDays int
}

// LargeMovieBytes is the large-movie boundary. The comparison is strict:
// a movie of exactly this size is NOT large.
func (t Thresholds) LargeMovieBytes() int64 {
	return int64(t.LargeMovieSizeGB) << 30
}

// LargeSeasonBytes is the large-season boundary, strict like
// LargeMovieBytes.
func (t Thresholds) LargeSeasonBytes() int64 {
	return int64(t.LargeSeasonSizeGB) << 30
}

// Resolve layers threshold sources: process defaults, then the user's yaml
// overrides, then any stored per-user row (set through the API), which
// wins.
func Resolve(defaults Thresholds, overrides users.Overrides, stored *database.UserThresholds) Thresholds {
	t := defaults

	if overrides.OldContentMonths > 0 {
		t.OldContentMonths = overrides.OldContentMonths
	}
	if overrides.MinAgeMonths > 0 {
		t.MinAgeMonths = overrides.MinAgeMonths
	}
	if overrides.LargeMovieSizeGB > 0 {
		t.LargeMovieSizeGB = overrides.LargeMovieSizeGB
	}
	if overrides.LargeSeasonSizeGB > 0 {
		t.LargeSeasonSizeGB = overrides.LargeSeasonSizeGB
	}
	if overrides.RecentlyAvailableDays > 0 {
		t.RecentlyAvailableDays = overrides.RecentlyAvailableDays
	}

	if stored != nil {
		t.OldContentMonths = stored.OldContentMonths
		t.MinAgeMonths = stored.MinAgeMonths
		t.LargeMovieSizeGB = stored.LargeMovieSizeGB
		t.LargeSeasonSizeGB = stored.LargeSeasonSizeGB
		t.RecentlyAvailableDays = stored.RecentlyAvailableDays
	}

	return t
}

// RequestOptions are the process-wide toggles for the unavailable-request
// classification. The two filters are independent.
type RequestOptions struct {
	FilterFutureReleases      bool
	FilterRecentReleases      bool
	RecentReleaseMonthsCutoff int
}
