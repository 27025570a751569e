package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"restou/internal/scraper"
)

// ErrNoSnapshot is returned by Latest when the store is empty.
var ErrNoSnapshot = errors.New("no snapshot stored")

// timestampLayout is fixed-width so file names sort chronologically.
const timestampLayout = "2006-01-02T15-04-05.000000000Z"

// SnapshotStore keeps the raw scraped documents on disk, one JSON file per
// scrape run.
type SnapshotStore struct {
	basePath string
}

// NewSnapshotStore creates a new SnapshotStore and ensures the base directory exists.
func NewSnapshotStore(basePath string) (*SnapshotStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &SnapshotStore{basePath: basePath}, nil
}

type snapshotFile struct {
	path      string
	timestamp string
}

func (s *SnapshotStore) snapshotPath(doc scraper.Document, at time.Time) string {
	prefix := "empty"
	if len(doc) > 0 {
		prefix = doc[0].Date
	}
	filename := fmt.Sprintf("%s_%s.json", prefix, at.UTC().Format(timestampLayout))
	return filepath.Join(s.basePath, filename)
}

// Save writes doc to a file named after its first date and the scrape time.
func (s *SnapshotStore) Save(doc scraper.Document, at time.Time) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	filePath := s.snapshotPath(doc, at)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return filePath, nil
}

// list returns the stored snapshots, oldest first.
func (s *SnapshotStore) list() ([]snapshotFile, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshot files: %w", err)
	}

	files := make([]snapshotFile, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		idx := strings.LastIndex(name, "_")
		files = append(files, snapshotFile{path: m, timestamp: name[idx+1:]})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].timestamp < files[j].timestamp
	})
	return files, nil
}

// Latest loads the most recently saved snapshot.
func (s *SnapshotStore) Latest() (scraper.Document, error) {
	files, err := s.list()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSnapshot
	}

	data, err := os.ReadFile(files[len(files)-1].path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var doc scraper.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return doc, nil
}

// Prune keeps the newest keep snapshots and removes the rest.
func (s *SnapshotStore) Prune(keep int) (int, error) {
	files, err := s.list()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	removed := 0
	for i := 0; i < len(files)-keep; i++ {
		if err := os.Remove(files[i].path); err != nil {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", files[i].path, err)
		}
		removed++
	}
	return removed, nil
}
