package analysis

import (
	"testing"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

func movieWithAudio(name string, audio ...string) database.MediaItem {
	return database.MediaItem{
		Name: name,
		Kind: database.KindMovie,
		Payload: database.ItemPayload{
			AudioLanguages: audio,
		},
	}
}

func TestMissingLanguagesEnglishPresent(t *testing.T) {
	items := []database.MediaItem{movieWithAudio("Fine Movie", "en", "fr")}

	result := MissingLanguages(items, emptySets())

	if len(result.Findings) != 0 {
		t.Errorf("Movie with English audio should not be flagged, got %d findings", len(result.Findings))
	}
}

func TestMissingLanguagesEnglishAbsent(t *testing.T) {
	items := []database.MediaItem{movieWithAudio("Foreign Movie", "de")}

	result := MissingLanguages(items, emptySets())

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	if !result.Findings[0].MissingEnglishAudio {
		t.Errorf("Finding should report missing English audio")
	}
}

func TestMissingLanguagesFrenchAudioOnlyWaivesCheck(t *testing.T) {
	sets := emptySets()
	sets.FrenchAudioOnly["comédie française"] = struct{}{}

	items := []database.MediaItem{movieWithAudio("Comédie Française", "fr")}

	result := MissingLanguages(items, sets)

	if len(result.Findings) != 0 {
		t.Errorf("French-audio-only title should not be flagged, got %d findings", len(result.Findings))
	}
}

func TestMissingLanguagesFrenchSubsOnly(t *testing.T) {
	sets := emptySets()
	sets.FrenchSubsOnly["subtitled movie"] = struct{}{}
	sets.FrenchSubsOnly["unsubtitled movie"] = struct{}{}

	withSubs := movieWithAudio("Subtitled Movie", "ja")
	withSubs.Payload.SubtitleLanguages = []string{"fr"}

	withoutSubs := movieWithAudio("Unsubtitled Movie", "ja")

	result := MissingLanguages([]database.MediaItem{withSubs, withoutSubs}, sets)

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	if result.Findings[0].Item.Name != "Unsubtitled Movie" {
		t.Errorf("Expected 'Unsubtitled Movie', got '%s'", result.Findings[0].Item.Name)
	}
	if !result.Findings[0].MissingFrenchSubtitles {
		t.Errorf("Finding should report missing French subtitles")
	}
	if result.Findings[0].MissingEnglishAudio {
		t.Errorf("French-subs-only titles waive the English audio requirement")
	}
}

func TestMissingLanguagesExemptProtects(t *testing.T) {
	sets := emptySets()
	sets.LanguageExempt["exempt movie"] = struct{}{}

	items := []database.MediaItem{movieWithAudio("Exempt Movie", "ko")}

	result := MissingLanguages(items, sets)

	if len(result.Findings) != 0 {
		t.Errorf("Exempted item should not be flagged, got %d findings", len(result.Findings))
	}
	if result.ProtectedCount != 1 {
		t.Errorf("Expected protected count 1, got %d", result.ProtectedCount)
	}
}

func TestMissingLanguagesSeriesPerEpisode(t *testing.T) {
	sets := emptySets()
	sets.Episodes[database.EpisodeKey{Show: "some show", Season: 1, Episode: 2}] = struct{}{}

	show := database.MediaItem{
		Name: "Some Show",
		Kind: database.KindSeries,
		Payload: database.ItemPayload{
			Episodes: []database.EpisodeInfo{
				{Season: 1, Episode: 1, AudioLanguages: []string{"en"}},
				{Season: 1, Episode: 2, AudioLanguages: []string{"fr"}}, // exempted
				{Season: 1, Episode: 3, AudioLanguages: []string{"fr"}},
			},
		},
	}

	result := MissingLanguages([]database.MediaItem{show}, sets)

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	finding := result.Findings[0]
	if len(finding.Episodes) != 1 {
		t.Fatalf("Expected 1 offending episode, got %d", len(finding.Episodes))
	}
	if finding.Episodes[0].Episode != 3 {
		t.Errorf("Expected episode 3 to be offending, got %d", finding.Episodes[0].Episode)
	}
}

func TestMissingLanguagesSeriesAllEpisodesExempt(t *testing.T) {
	sets := emptySets()
	sets.Episodes[database.EpisodeKey{Show: "small show", Season: 1, Episode: 1}] = struct{}{}

	show := database.MediaItem{
		Name: "Small Show",
		Kind: database.KindSeries,
		Payload: database.ItemPayload{
			Episodes: []database.EpisodeInfo{
				{Season: 1, Episode: 1, AudioLanguages: []string{"fr"}},
			},
		},
	}

	result := MissingLanguages([]database.MediaItem{show}, sets)

	if len(result.Findings) != 0 {
		t.Errorf("Show with only exempted episodes should not be flagged, got %d findings", len(result.Findings))
	}
}
