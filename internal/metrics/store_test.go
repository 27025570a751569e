package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restou/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "restou.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	return NewStore(db.SQL)
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	base := time.Date(2025, 4, 14, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, ScrapeRun{
			RunID:     id,
			Days:      5,
			Created:   i,
			Updated:   10 - i,
			LatencyMS: 120,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
	assert.Equal(t, 2, runs[0].Created)
	assert.Equal(t, 8, runs[0].Updated)
	assert.True(t, runs[0].Timestamp.Equal(base.Add(2*time.Hour)))
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.Record(ctx, ScrapeRun{RunID: "old", Timestamp: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, s.Record(ctx, ScrapeRun{RunID: "new"}))

	n, err := s.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].RunID)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), make([]byte, 2048), 0644))

	h := GetSysHealth(dir)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "2.0 KB", h.DataSize)
	assert.Positive(t, h.Goroutines)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 MB", humanSize(1536*1024))
}
