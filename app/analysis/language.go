package analysis

import (
	"slices"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// LanguageFinding is one item with an incomplete language setup: either
// English audio is missing, or the item is on the french-subs allowlist
// and the required French subtitles are missing. For series the offending
// episodes are listed when episode data is available.
type LanguageFinding struct {
	Item                   database.MediaItem
	MissingEnglishAudio    bool
	MissingFrenchSubtitles bool
	Episodes               []database.EpisodeInfo
}

// LanguageResult is the language-completeness classification.
// ProtectedCount counts items skipped by the language-exempt allowlist.
type LanguageResult struct {
	Findings       []LanguageFinding
	ProtectedCount int
}

// MissingLanguages flags items whose audio or subtitle tracks do not meet
// the language policy. The baseline requirement is an English audio track.
// Allowlists relax it: french_audio_only waives the audio requirement
// entirely, french_subs_only waives the audio requirement but demands
// French subtitles instead, and language_exempt skips the item.
func MissingLanguages(items []database.MediaItem, sets database.WhitelistSets) LanguageResult {
	var result LanguageResult

	for _, item := range items {
		name := normalizeName(item.Name)

		if _, ok := sets.LanguageExempt[name]; ok {
			result.ProtectedCount++
			continue
		}
		if _, ok := sets.FrenchAudioOnly[name]; ok {
			continue
		}

		if _, ok := sets.FrenchSubsOnly[name]; ok {
			if !slices.Contains(item.Payload.SubtitleLanguages, "fr") {
				result.Findings = append(result.Findings, LanguageFinding{
					Item:                   item,
					MissingFrenchSubtitles: true,
				})
			}
			continue
		}

		if finding, flagged := missingEnglishAudio(item, sets); flagged {
			result.Findings = append(result.Findings, finding)
		}
	}

	return result
}

// missingEnglishAudio checks the English audio requirement. Series with
// episode data are judged per episode so a single exempted special does
// not flag the whole show; series without episode data and movies are
// judged on their aggregate track list.
func missingEnglishAudio(item database.MediaItem, sets database.WhitelistSets) (LanguageFinding, bool) {
	if item.Kind == database.KindSeries && len(item.Payload.Episodes) > 0 {
		name := normalizeName(item.Name)

		var offending []database.EpisodeInfo
		for _, ep := range item.Payload.Episodes {
			if slices.Contains(ep.AudioLanguages, "en") {
				continue
			}
			key := database.EpisodeKey{Show: name, Season: ep.Season, Episode: ep.Episode}
			if _, ok := sets.Episodes[key]; ok {
				continue
			}
			offending = append(offending, ep)
		}

		if len(offending) == 0 {
			return LanguageFinding{}, false
		}
		return LanguageFinding{Item: item, MissingEnglishAudio: true, Episodes: offending}, true
	}

	if slices.Contains(item.Payload.AudioLanguages, "en") {
		return LanguageFinding{}, false
	}
	return LanguageFinding{Item: item, MissingEnglishAudio: true}, true
}
