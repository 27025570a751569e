package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Defaults applied to missing event attributes.
const (
	DefaultPage      = "unknown"
	DefaultVariant   = "default"
	DefaultEventType = "unknown"
)

// Event is a page visit or interaction used for A/B comparisons.
type Event struct {
	ID        int64     `json:"id"`
	Page      string    `json:"page"`
	Variant   string    `json:"variant"`
	EventType string    `json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles persistence of tracking events.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new tracking repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Record stores an event, filling empty attributes with their defaults.
func (r *Repository) Record(ctx context.Context, page, variant, eventType string) (*Event, error) {
	e := Event{
		Page:      orDefault(page, DefaultPage),
		Variant:   orDefault(variant, DefaultVariant),
		EventType: orDefault(eventType, DefaultEventType),
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tracking (page, variant, event_type, created_at) VALUES (?, ?, ?, ?)`,
		e.Page, e.Variant, e.EventType, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record tracking event: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read tracking id: %w", err)
	}
	return &e, nil
}

// List returns the events of a page in insertion order.
func (r *Repository) List(ctx context.Context, page string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, page, variant, event_type, created_at FROM tracking WHERE page = ? ORDER BY id`, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Page, &e.Variant, &e.EventType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracking event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
