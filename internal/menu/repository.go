package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const selectColumns = `id, date, meal_period, starters, main_courses, desserts, accompaniments, extra`

// Repository is a database-backed repository for menus.
type Repository struct {
	db *sql.DB

	// mu serialises read-then-write sequences on the (date, meal_period)
	// key. The unique index on menus catches writers in other processes.
	mu sync.Mutex
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get retrieves the menu for a date and meal period.
func (r *Repository) Get(ctx context.Context, date string, period MealPeriod) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM menus WHERE date = ? AND meal_period = ?`,
		date, string(period),
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get menu %s/%s: %w", ErrPersistence, date, period, err)
	}
	return rec, nil
}

// GetByID retrieves a menu by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM menus WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get menu %d: %w", ErrPersistence, id, err)
	}
	return rec, nil
}

// List retrieves all menus, most recent date first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM menus ORDER BY date DESC, meal_period ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list menus: %w", ErrPersistence, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan menu: %w", ErrPersistence, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate menus: %w", ErrPersistence, err)
	}
	return records, nil
}

// Create inserts a manually entered menu. It fails with ErrAlreadyExists
// when a menu is already stored for the same date and meal period.
func (r *Repository) Create(ctx context.Context, rec Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.Get(ctx, rec.Date, rec.MealPeriod); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var accompaniments any
	if rec.Accompaniments != nil {
		accompaniments = encodeList(rec.Accompaniments)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menus (date, meal_period, starters, main_courses, desserts, accompaniments, extra)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Date, string(rec.MealPeriod),
		encodeList(rec.Starters), encodeList(rec.MainCourses), encodeList(rec.Desserts),
		accompaniments, rec.Extra,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("%w: failed to insert menu: %w", ErrPersistence, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read menu id: %w", ErrPersistence, err)
	}
	return r.GetByID(ctx, id)
}

// CourseUpdate holds the fields an administrator may edit on an existing
// menu. Nil slices leave the stored value untouched.
type CourseUpdate struct {
	MainCourses    []string
	Accompaniments []string
	Desserts       []string
}

// UpdateCourses edits an existing menu in place.
func (r *Repository) UpdateCourses(ctx context.Context, id int64, upd CourseUpdate) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.MainCourses != nil {
		current.MainCourses = upd.MainCourses
	}
	if upd.Desserts != nil {
		current.Desserts = upd.Desserts
	}
	var accompaniments any
	if upd.Accompaniments != nil {
		current.Accompaniments = upd.Accompaniments
	}
	if current.Accompaniments != nil {
		accompaniments = encodeList(current.Accompaniments)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE menus SET main_courses = ?, desserts = ?, accompaniments = ? WHERE id = ?`,
		encodeList(current.MainCourses), encodeList(current.Desserts), accompaniments, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update menu %d: %w", ErrPersistence, id, err)
	}
	return current, nil
}

// Upsert stores a scraped entry: one read by (date, meal_period), then one
// UPDATE of main_courses/desserts when the row exists or one INSERT with
// empty starters when it does not.
func (r *Repository) Upsert(ctx context.Context, e Entry) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM menus WHERE date = ? AND meal_period = ?`,
		e.Date, string(e.Period),
	).Scan(&id)

	switch {
	case err == nil:
		if _, err := r.db.ExecContext(ctx,
			`UPDATE menus SET main_courses = ?, desserts = ? WHERE id = ?`,
			encodeList(e.MainCourses), encodeList(e.Desserts), id,
		); err != nil {
			return UpsertResult{}, fmt.Errorf("%w: failed to update menu %s/%s: %w", ErrPersistence, e.Date, e.Period, err)
		}
		return UpsertResult{ID: id, Created: false}, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO menus (date, meal_period, starters, main_courses, desserts) VALUES (?, ?, ?, ?, ?)`,
			e.Date, string(e.Period), encodeList(nil), encodeList(e.MainCourses), encodeList(e.Desserts),
		)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("%w: failed to insert menu %s/%s: %w", ErrPersistence, e.Date, e.Period, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return UpsertResult{}, fmt.Errorf("%w: failed to read menu id: %w", ErrPersistence, err)
		}
		return UpsertResult{ID: newID, Created: true}, nil

	default:
		return UpsertResult{}, fmt.Errorf("%w: failed to look up menu %s/%s: %w", ErrPersistence, e.Date, e.Period, err)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec                             Record
		period                          string
		starters, mainCourses, desserts string
		accompaniments, extra           sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.Date, &period, &starters, &mainCourses, &desserts, &accompaniments, &extra); err != nil {
		return nil, err
	}
	rec.MealPeriod = MealPeriod(period)

	var err error
	if rec.Starters, err = decodeList(starters); err != nil {
		return nil, err
	}
	if rec.MainCourses, err = decodeList(mainCourses); err != nil {
		return nil, err
	}
	if rec.Desserts, err = decodeList(desserts); err != nil {
		return nil, err
	}
	if accompaniments.Valid {
		if rec.Accompaniments, err = decodeList(accompaniments.String); err != nil {
			return nil, err
		}
	}
	if extra.Valid {
		rec.Extra = &extra.String
	}
	return &rec, nil
}

// encodeList stores dish lists as JSON arrays; nil becomes "[]".
func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dish list: %w", err)
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
