package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "restou.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"menus", "admins", "feedback", "tracking", "scrape_runs"} {
		var name string
		err := db.SQL.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}

	version, dirty, err := SchemaVersion(dbPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "restou.db")

	require.NoError(t, RunMigrations(dbPath))
	require.NoError(t, RunMigrations(dbPath))
}

func TestMenusUniqueIndex(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "restou.db"))
	require.NoError(t, err)
	defer db.Close()

	insert := `INSERT INTO menus (date, meal_period) VALUES ('2025-04-14', 'midi')`
	_, err = db.SQL.Exec(insert)
	require.NoError(t, err)

	_, err = db.SQL.Exec(insert)
	assert.Error(t, err, "a second menu for the same date and period must be rejected")
}

func TestRollbackMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "restou.db")
	require.NoError(t, RunMigrations(dbPath))

	require.NoError(t, RollbackMigrations(dbPath, 1))

	version, _, err := SchemaVersion(dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	assert.Error(t, RollbackMigrations(dbPath, 0))
}
