package scraper

import (
	"reflect"
	"testing"

	"restou/internal/menu"
)

func TestClassify(t *testing.T) {
	tests := map[string]Category{
		"Menu":          CategoryMainCourse,
		"Menu du jour":  CategoryMainCourse,
		"MENU":          CategoryMainCourse,
		"Nos desserts":  CategoryDessert,
		"Desserts":      CategoryDessert,
		"Fromages":      CategoryUnknown,
		"Entrées":       CategoryUnknown,
		"":              CategoryUnknown,
		"Menu desserts": CategoryMainCourse,
	}
	for label, want := range tests {
		if got := Classify(label); got != want {
			t.Errorf("Classify(%q) = %s, want %s", label, got, want)
		}
	}
}

func TestCollect_Accumulates(t *testing.T) {
	meal := MealBlock{
		Sections: []FoodSection{
			{Label: "Menu", Dishes: []string{"Poulet"}},
			{Label: "Fromages", Dishes: []string{"Brie"}},
			{Label: "Desserts", Dishes: []string{"Yaourt"}},
			{Label: "Menu végétarien", Dishes: []string{"Tofu"}},
			{Label: "Dessert du jour", Dishes: []string{"Crêpe"}},
		},
	}

	mains, desserts := Collect(meal)
	if !reflect.DeepEqual(mains, []string{"Poulet", "Tofu"}) {
		t.Errorf("Expected mains [Poulet Tofu], got %v", mains)
	}
	if !reflect.DeepEqual(desserts, []string{"Yaourt", "Crêpe"}) {
		t.Errorf("Expected desserts [Yaourt Crêpe], got %v", desserts)
	}
}

func TestCollect_EmptyMeal(t *testing.T) {
	mains, desserts := Collect(MealBlock{})
	if mains == nil || desserts == nil {
		t.Fatal("Expected non-nil empty slices")
	}
	if len(mains) != 0 || len(desserts) != 0 {
		t.Errorf("Expected empty lists, got %v / %v", mains, desserts)
	}
}

func TestEntries(t *testing.T) {
	doc := loadFixture(t)

	entries := Entries(doc)
	want := []menu.Entry{
		{Date: "2025-04-14", Period: menu.PeriodLunch, MainCourses: []string{"Poulet", "Poisson"}, Desserts: []string{"Yaourt"}},
		{Date: "2025-04-14", Period: menu.PeriodDinner, MainCourses: []string{"Gratin de pâtes"}, Desserts: []string{}},
		{Date: "2025-02-01", Period: menu.PeriodLunch, MainCourses: []string{"Couscous", "Falafels"}, Desserts: []string{"Flan"}},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Entries mismatch:\n got  %+v\n want %+v", entries, want)
	}
}
