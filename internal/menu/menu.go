package menu

import (
	"errors"
	"fmt"
	"time"
)

// MealPeriod is the service a menu belongs to.
type MealPeriod string

const (
	PeriodLunch  MealPeriod = "midi"
	PeriodDinner MealPeriod = "soir"
)

// DateLayout is the calendar date format used for menu keys.
const DateLayout = "2006-01-02"

var (
	ErrNotFound      = errors.New("menu not found")
	ErrAlreadyExists = errors.New("menu already exists for this date and meal period")
	ErrPersistence   = errors.New("menu persistence failure")
	ErrInvalidInput  = errors.New("invalid menu input")
)

// ParsePeriod validates a raw meal period value.
func ParsePeriod(s string) (MealPeriod, error) {
	switch MealPeriod(s) {
	case PeriodLunch, PeriodDinner:
		return MealPeriod(s), nil
	}
	return "", fmt.Errorf("%w: meal period must be %q or %q, got %q", ErrInvalidInput, PeriodLunch, PeriodDinner, s)
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, s)
	}
	return nil
}

// Record is one meal's offerings for one date and period. The JSON field
// names are read by the menu display and feedback pages.
type Record struct {
	ID             int64      `json:"id"`
	Date           string     `json:"date"`
	MealPeriod     MealPeriod `json:"meal_period"`
	Starters       []string   `json:"starters"`
	MainCourses    []string   `json:"main_courses"`
	Desserts       []string   `json:"desserts"`
	Accompaniments []string   `json:"accompaniments,omitempty"`
	Extra          *string    `json:"extra,omitempty"`
}

// Entry is the scraper's contribution to a menu: only main courses and
// desserts are ever written by an upsert.
type Entry struct {
	Date        string
	Period      MealPeriod
	MainCourses []string
	Desserts    []string
}

// UpsertResult reports which branch an upsert took.
type UpsertResult struct {
	ID      int64
	Created bool
}
