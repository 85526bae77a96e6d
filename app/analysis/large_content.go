package analysis

import (
	"sort"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// SeasonFinding is one oversized season of a series.
type SeasonFinding struct {
	Item      database.MediaItem
	Season    int
	SizeBytes int64
}

// LargeMovies returns movies strictly larger than the movie size
// threshold. A movie of exactly the threshold is not large.
func LargeMovies(items []database.MediaItem, t Thresholds) []database.MediaItem {
	boundary := t.LargeMovieBytes()

	var large []database.MediaItem
	for _, item := range items {
		if item.Kind != database.KindMovie {
			continue
		}
		if item.SizeBytes > boundary {
			large = append(large, item)
		}
	}
	return large
}

// LargeSeasons returns individual seasons strictly larger than the season
// size threshold, ordered by size descending. Seasons are judged one by
// one so a large show with many normal seasons is not flagged wholesale.
func LargeSeasons(items []database.MediaItem, t Thresholds) []SeasonFinding {
	boundary := t.LargeSeasonBytes()

	var findings []SeasonFinding
	for _, item := range items {
		if item.Kind != database.KindSeries {
			continue
		}
		for season, size := range item.Payload.SeasonSizes {
			if size > boundary {
				findings = append(findings, SeasonFinding{Item: item, Season: season, SizeBytes: size})
			}
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].SizeBytes != findings[j].SizeBytes {
			return findings[i].SizeBytes > findings[j].SizeBytes
		}
		if findings[i].Item.Name != findings[j].Item.Name {
			return findings[i].Item.Name < findings[j].Item.Name
		}
		return findings[i].Season < findings[j].Season
	})
	return findings
}

// TotalSize sums the sizes of exactly the given items.
func TotalSize(items []database.MediaItem) int64 {
	var total int64
	for _, item := range items {
		total += item.SizeBytes
	}
	return total
}
