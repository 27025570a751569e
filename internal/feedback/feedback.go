package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("invalid feedback")

// MinRating and MaxRating bound every rating field.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is one diner's answer to the post-meal questionnaire.
type Feedback struct {
	ID                       int64     `json:"id"`
	MainDishRating           int       `json:"main_dish_rating"`
	MainDishTasteRating      int       `json:"main_dish_taste_rating"`
	AccompanimentRating      int       `json:"accompaniment_rating"`
	AccompanimentTasteRating int       `json:"accompaniment_taste_rating"`
	PortionRating            int       `json:"portion_rating"`
	FinishedPlate            bool      `json:"finished_plate"`
	NotEatenReason           *string   `json:"not_eaten_reason"`
	Comment                  string    `json:"comment"`
	ChosenMainCourse         string    `json:"chosen_main_course"`
	ChosenAccompaniment      string    `json:"chosen_accompaniment"`
	Date                     time.Time `json:"date"`
}

// Normalize validates ratings, drops the not-eaten reason of a finished
// plate and stamps a missing date with now.
func (f *Feedback) Normalize(now time.Time) error {
	ratings := []struct {
		name  string
		value int
	}{
		{"main_dish_rating", f.MainDishRating},
		{"main_dish_taste_rating", f.MainDishTasteRating},
		{"accompaniment_rating", f.AccompanimentRating},
		{"accompaniment_taste_rating", f.AccompanimentTasteRating},
		{"portion_rating", f.PortionRating},
	}
	for _, r := range ratings {
		if r.value < MinRating || r.value > MaxRating {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidInput, r.name, MinRating, MaxRating, r.value)
		}
	}

	if f.FinishedPlate {
		f.NotEatenReason = nil
	} else if f.NotEatenReason != nil && strings.TrimSpace(*f.NotEatenReason) == "" {
		f.NotEatenReason = nil
	}
	f.Comment = strings.TrimSpace(f.Comment)

	if f.Date.IsZero() {
		f.Date = now
	}
	f.Date = f.Date.UTC()
	return nil
}

// Repository handles persistence of feedback entries.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new feedback repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d, now: time.Now}
}

// Insert normalizes and stores an entry, returning it with its ID set.
func (r *Repository) Insert(ctx context.Context, f Feedback) (*Feedback, error) {
	if err := f.Normalize(r.now()); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (
			main_dish_rating, main_dish_taste_rating, accompaniment_rating,
			accompaniment_taste_rating, portion_rating, finished_plate,
			not_eaten_reason, comment, chosen_main_course, chosen_accompaniment, date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.MainDishRating, f.MainDishTasteRating, f.AccompanimentRating,
		f.AccompanimentTasteRating, f.PortionRating, f.FinishedPlate,
		f.NotEatenReason, f.Comment, f.ChosenMainCourse, f.ChosenAccompaniment, f.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feedback: %w", err)
	}

	if f.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read feedback id: %w", err)
	}
	return &f, nil
}

// List returns every entry, newest first.
func (r *Repository) List(ctx context.Context) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, main_dish_rating, main_dish_taste_rating, accompaniment_rating,
			accompaniment_taste_rating, portion_rating, finished_plate,
			not_eaten_reason, comment, chosen_main_course, chosen_accompaniment, date
		FROM feedback
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	entries := []Feedback{}
	for rows.Next() {
		var (
			f      Feedback
			reason sql.NullString
		)
		if err := rows.Scan(
			&f.ID, &f.MainDishRating, &f.MainDishTasteRating, &f.AccompanimentRating,
			&f.AccompanimentTasteRating, &f.PortionRating, &f.FinishedPlate,
			&reason, &f.Comment, &f.ChosenMainCourse, &f.ChosenAccompaniment, &f.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if reason.Valid {
			f.NotEatenReason = &reason.String
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}
