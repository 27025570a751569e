package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ScrapeRun records the outcome of a single scrape pipeline execution.
type ScrapeRun struct {
	RunID     string    `json:"run_id"`
	Days      int       `json:"days"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Store handles persistence of scrape metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a run to the database.
func (s *Store) Record(ctx context.Context, r ScrapeRun) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (run_id, days, created, updated, failed, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Days, r.Created, r.Updated, r.Failed, r.LatencyMS, ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record scrape run %s: %w", r.RunID, err)
	}
	return nil
}

// Recent returns the last limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ScrapeRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, days, created, updated, failed, latency_ms, timestamp
		FROM scrape_runs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer rows.Close()

	runs := []ScrapeRun{}
	for rows.Next() {
		var r ScrapeRun
		if err := rows.Scan(&r.RunID, &r.Days, &r.Created, &r.Updated, &r.Failed, &r.LatencyMS, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// reports how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM scrape_runs WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up scrape runs: %w", err)
	}
	return res.RowsAffected()
}
