package database

import (
	"testing"
)

func TestThresholdsGetMissingReturnsNil(t *testing.T) {
	repo := NewUserThresholdsRepository(newTestDB(t))

	stored, err := repo.Get("alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored != nil {
		t.Errorf("Expected nil for user without overrides, got %+v", stored)
	}
}

func TestThresholdsUpsert(t *testing.T) {
	repo := NewUserThresholdsRepository(newTestDB(t))

	if err := repo.Upsert(UserThresholds{
		UserID:                "alice",
		OldContentMonths:      6,
		MinAgeMonths:          2,
		LargeMovieSizeGB:      20,
		LargeSeasonSizeGB:     40,
		RecentlyAvailableDays: 14,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	stored, err := repo.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Fatal("Expected stored thresholds")
	}
	if stored.OldContentMonths != 6 || stored.LargeMovieSizeGB != 20 {
		t.Errorf("Unexpected stored values: %+v", stored)
	}

	// Second upsert overwrites.
	if err := repo.Upsert(UserThresholds{
		UserID:                "alice",
		OldContentMonths:      9,
		MinAgeMonths:          2,
		LargeMovieSizeGB:      20,
		LargeSeasonSizeGB:     40,
		RecentlyAvailableDays: 14,
	}); err != nil {
		t.Fatal(err)
	}

	stored, err = repo.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.OldContentMonths != 9 {
		t.Errorf("Expected updated value 9, got %d", stored.OldContentMonths)
	}
}
