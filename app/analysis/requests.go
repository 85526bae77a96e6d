package analysis

import (
	"sort"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// UnavailableRequests returns requests whose media has not become fully
// available. The two release-date filters are independent: future releases
// are excluded when FilterFutureReleases is set, and releases newer than
// the recency cutoff are excluded when FilterRecentReleases is set. A
// request without a known release date is never filtered out.
func UnavailableRequests(requests []database.Request, opts RequestOptions, now time.Time) []database.Request {
	recentCutoff := now.AddDate(0, -opts.RecentReleaseMonthsCutoff, 0)

	var unavailable []database.Request
	for _, req := range requests {
		if req.Status == database.StatusAvailable {
			continue
		}

		if req.ReleaseDate != nil {
			if opts.FilterFutureReleases && req.ReleaseDate.After(now) {
				continue
			}
			if opts.FilterRecentReleases && req.ReleaseDate.After(recentCutoff) {
				continue
			}
		}

		unavailable = append(unavailable, req)
	}
	return unavailable
}

// SeasonProgress is one season of a requested show that is actively
// airing.
type SeasonProgress struct {
	Request       database.Request
	Season        int
	AiredEpisodes int
	TotalEpisodes int
}

// InProgressSeasons returns seasons that have started airing but are not
// finished, judged from the aired and declared episode counts rather than
// the stored season status so a stale status label cannot hide an airing
// season.
func InProgressSeasons(requests []database.Request) []SeasonProgress {
	var progress []SeasonProgress
	for _, req := range requests {
		for _, season := range req.Seasons {
			if season.AiredEpisodes > 0 && season.AiredEpisodes < season.TotalEpisodes {
				progress = append(progress, SeasonProgress{
					Request:       req,
					Season:        season.Season,
					AiredEpisodes: season.AiredEpisodes,
					TotalEpisodes: season.TotalEpisodes,
				})
			}
		}
	}
	return progress
}

// AvailabilityGroup is one calendar day (UTC) of newly available requests.
type AvailabilityGroup struct {
	Date     string // YYYY-MM-DD
	Requests []database.Request
}

// RecentlyAvailable returns requests that became available within the
// trailing window, grouped by UTC day with the newest day first. Within a
// day, newest availability first.
func RecentlyAvailable(requests []database.Request, days int, now time.Time) []AvailabilityGroup {
	windowStart := now.AddDate(0, 0, -days)

	byDay := make(map[string][]database.Request)
	for _, req := range requests {
		if req.Status != database.StatusAvailable || req.AvailableAt == nil {
			continue
		}
		if req.AvailableAt.Before(windowStart) || req.AvailableAt.After(now) {
			continue
		}
		day := req.AvailableAt.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], req)
	}

	groups := make([]AvailabilityGroup, 0, len(byDay))
	for day, reqs := range byDay {
		sort.Slice(reqs, func(i, j int) bool { return reqs[i].AvailableAt.After(*reqs[j].AvailableAt) })
		groups = append(groups, AvailabilityGroup{Date: day, Requests: reqs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}
