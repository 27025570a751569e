package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"restou/internal/menu"
	"restou/internal/scraper"
)

func sampleDoc(date string) scraper.Document {
	return scraper.Document{{
		Date: date,
		Meals: []scraper.MealBlock{{
			Title:  "Déjeuner",
			Period: menu.PeriodLunch,
			Sections: []scraper.FoodSection{
				{Label: "Menu", Dishes: []string{"Poulet"}},
			},
		}},
	}}
}

func TestSnapshotStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewSnapshotStore(filepath.Join(tempDir, "snapshots"))
	if err != nil {
		t.Fatalf("Failed to create SnapshotStore: %v", err)
	}

	t.Run("Latest-Empty", func(t *testing.T) {
		if _, err := store.Latest(); !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("Expected ErrNoSnapshot, got %v", err)
		}
	})

	base := time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)

	t.Run("Save", func(t *testing.T) {
		path, err := store.Save(sampleDoc("2025-04-14"), base)
		if err != nil {
			t.Fatalf("Failed to save snapshot: %v", err)
		}
		want := "2025-04-14_2025-04-14T09-00-00.000000000Z.json"
		if filepath.Base(path) != want {
			t.Errorf("Expected file name %s, got %s", want, filepath.Base(path))
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected file '%s' to be created: %v", path, err)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		// An earlier first date must not hide a newer scrape.
		if _, err := store.Save(sampleDoc("2025-04-07"), base.Add(time.Hour)); err != nil {
			t.Fatal(err)
		}
		got, err := store.Latest()
		if err != nil {
			t.Fatalf("Failed to load latest: %v", err)
		}
		if !reflect.DeepEqual(got, sampleDoc("2025-04-07")) {
			t.Errorf("Expected the newest snapshot, got %+v", got)
		}
	})

	t.Run("SaveEmpty", func(t *testing.T) {
		path, err := store.Save(scraper.Document{}, base.Add(2*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(path) != "empty_2025-04-14T11-00-00.000000000Z.json" {
			t.Errorf("Unexpected file name %s", filepath.Base(path))
		}
	})

	t.Run("Prune", func(t *testing.T) {
		removed, err := store.Prune(1)
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("Expected 2 removed, got %d", removed)
		}
		got, err := store.Latest()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("Expected the empty snapshot to survive, got %+v", got)
		}
	})
}
