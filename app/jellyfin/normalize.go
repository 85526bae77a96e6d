package jellyfin

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// normalizeItem flattens one library item and (for series) its episodes
// into the cache shape the analysis engine expects.
func normalizeItem(it apiItem, episodes []apiItem) database.MediaItem {
	item := database.MediaItem{
		ExternalID:     it.ID,
		Name:           it.Name,
		Kind:           database.KindMovie,
		ProductionYear: it.ProductionYear,
		FilePath:       it.Path,
		Payload: database.ItemPayload{
			ProviderIDs: providerIDs(it.ProviderIds),
		},
	}

	if it.Type == "Series" {
		item.Kind = database.KindSeries
	}

	if it.DateCreated != nil {
		item.DateCreated = it.DateCreated.UTC()
	}

	if it.UserData != nil {
		item.Played = it.UserData.Played
		item.PlayCount = it.UserData.PlayCount
		if it.UserData.LastPlayedDate != nil {
			t := it.UserData.LastPlayedDate.UTC()
			item.LastPlayedAt = &t
		}
	}

	if item.Kind == database.KindMovie {
		item.SizeBytes = canonicalSize(it.MediaSources)
		item.Payload.AudioLanguages = streamLanguages(it.MediaSources, "Audio")
		item.Payload.SubtitleLanguages = streamLanguages(it.MediaSources, "Subtitle")
		return item
	}

	normalizeSeries(&item, episodes)
	return item
}

// normalizeSeries aggregates episode data onto the series row: total size,
// per-season sizes, union of languages, and the per-episode language slices
// used by episode-level exemptions.
func normalizeSeries(item *database.MediaItem, episodes []apiItem) {
	seasonSizes := make(map[int]int64)
	audioSet := make(map[string]struct{})
	subsSet := make(map[string]struct{})

	var total int64
	var epInfos []database.EpisodeInfo

	for _, ep := range episodes {
		size := canonicalSize(ep.MediaSources)
		total += size

		season := 0
		if ep.ParentIndexNumber != nil {
			season = *ep.ParentIndexNumber
		}
		seasonSizes[season] += size

		epAudio := streamLanguages(ep.MediaSources, "Audio")
		epSubs := streamLanguages(ep.MediaSources, "Subtitle")
		for _, l := range epAudio {
			audioSet[l] = struct{}{}
		}
		for _, l := range epSubs {
			subsSet[l] = struct{}{}
		}

		if ep.IndexNumber != nil {
			epInfos = append(epInfos, database.EpisodeInfo{
				Season:            season,
				Episode:           *ep.IndexNumber,
				AudioLanguages:    epAudio,
				SubtitleLanguages: epSubs,
			})
		}
	}

	item.SizeBytes = total
	if len(seasonSizes) > 0 {
		item.Payload.SeasonSizes = seasonSizes
	}
	item.Payload.AudioLanguages = sortedKeys(audioSet)
	item.Payload.SubtitleLanguages = sortedKeys(subsSet)
	item.Payload.Episodes = epInfos
}

// canonicalSize picks the largest associated file as the item's size.
func canonicalSize(sources []mediaSource) int64 {
	var largest int64
	for _, s := range sources {
		if s.Size > largest {
			largest = s.Size
		}
	}
	return largest
}

// streamLanguages collects the distinct canonical languages of one stream
// type across all media sources.
func streamLanguages(sources []mediaSource, streamType string) []string {
	set := make(map[string]struct{})
	for _, s := range sources {
		for _, stream := range s.MediaStreams {
			if stream.Type != streamType {
				continue
			}
			if lang := CanonicalLanguage(stream.Language); lang != "" {
				set[lang] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// CanonicalLanguage maps a stream language tag ("eng", "fre", "en-US",
// "French") to its BCP-47 base ("en", "fr"). Unparseable tags are kept
// lower-cased rather than dropped so unusual tracks still surface.
func CanonicalLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}

	parsed, err := language.Parse(tag)
	if err == nil {
		if base, conf := parsed.Base(); conf > language.No {
			return base.String()
		}
	}

	// Some servers report full language names instead of tags.
	switch strings.ToLower(tag) {
	case "english":
		return "en"
	case "french", "français", "francais":
		return "fr"
	}

	return strings.ToLower(tag)
}

func providerIDs(ids map[string]string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(ids))
	for k, v := range ids {
		if v != "" {
			normalized[strings.ToLower(k)] = v
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
