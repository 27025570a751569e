package scraper

import (
	"strings"

	"restou/internal/menu"
)

// Category is the menu field a food section feeds.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryMainCourse
	CategoryDessert
)

func (c Category) String() string {
	switch c {
	case CategoryMainCourse:
		return "MAIN_COURSE"
	case CategoryDessert:
		return "DESSERT"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a section label to a category by case-insensitive
// substring: "menu" wins over "dessert".
func Classify(label string) Category {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "menu"):
		return CategoryMainCourse
	case strings.Contains(lower, "dessert"):
		return CategoryDessert
	default:
		return CategoryUnknown
	}
}

// Collect gathers the main courses and desserts of a meal. Sections sharing
// a category are concatenated in order; unknown sections are dropped.
func Collect(meal MealBlock) (mainCourses, desserts []string) {
	mainCourses = []string{}
	desserts = []string{}
	for _, s := range meal.Sections {
		switch Classify(s.Label) {
		case CategoryMainCourse:
			mainCourses = append(mainCourses, s.Dishes...)
		case CategoryDessert:
			desserts = append(desserts, s.Dishes...)
		}
	}
	return mainCourses, desserts
}

// Entries turns a document into one upsert entry per (date, meal) in
// document order.
func Entries(doc Document) []menu.Entry {
	var entries []menu.Entry
	for _, day := range doc {
		for _, meal := range day.Meals {
			mainCourses, desserts := Collect(meal)
			entries = append(entries, menu.Entry{
				Date:        day.Date,
				Period:      meal.Period,
				MainCourses: mainCourses,
				Desserts:    desserts,
			})
		}
	}
	return entries
}
