package scraper

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"restou/internal/menu"
)

// CSS selectors of the CROUS restaurant page.
const (
	selDay       = ".menu"
	selDateTitle = ".menu_date .menu_date_title"
	selMeal      = ".meal"
	selMealTitle = ".meal_title"
	selSection   = ".meal_foodies > li"
	selDish      = "ul li"
)

// disjunctionMarker separates alternatives in dish lists ("Poulet / OU / Poisson").
const disjunctionMarker = "ou"

var lunchKeywords = []string{"déjeuner", "dejeuner", "midi"}

// Document is the normalized content of one restaurant page.
type Document []DayBlock

// DayBlock holds the meals served on one date.
type DayBlock struct {
	Date  string      `json:"date"`
	Meals []MealBlock `json:"meals"`
}

// MealBlock is one service (lunch or dinner) of a day.
type MealBlock struct {
	Title    string          `json:"mealTitle"`
	Period   menu.MealPeriod `json:"period"`
	Sections []FoodSection   `json:"foodSections"`
}

// FoodSection is a labelled list of dishes inside a meal.
type FoodSection struct {
	Label  string   `json:"section"`
	Dishes []string `json:"dishes"`
}

// ExtractHTML parses a restaurant page held in memory.
func ExtractHTML(page string) (Document, error) {
	return Extract(strings.NewReader(page))
}

// Extract walks day blocks, meals, sections and dishes in document order.
// Day blocks whose date cannot be resolved are skipped.
func Extract(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu page: %w", err)
	}

	days := Document{}
	doc.Find(selDay).Each(func(i int, day *goquery.Selection) {
		title := strings.TrimSpace(day.Find(selDateTitle).Text())

		isoDate, err := resolveDate(title)
		if err != nil {
			log.Printf("Skipping day block %d (%q): %v", i, title, err)
			return
		}

		meals := []MealBlock{}
		day.Find(selMeal).Each(func(_ int, meal *goquery.Selection) {
			meals = append(meals, extractMeal(meal))
		})

		days = append(days, DayBlock{Date: isoDate, Meals: meals})
	})

	return days, nil
}

func resolveDate(title string) (string, error) {
	phrase, ok := FindDatePhrase(title)
	if !ok {
		return "", fmt.Errorf("%w: no date in %q", ErrUnrecognizedDateFormat, title)
	}
	return ParseFrenchDate(phrase)
}

func extractMeal(meal *goquery.Selection) MealBlock {
	title := strings.TrimSpace(meal.Find(selMealTitle).Text())

	sections := []FoodSection{}
	meal.Find(selSection).Each(func(_ int, item *goquery.Selection) {
		dishes := []string{}
		item.Find(selDish).Each(func(_ int, d *goquery.Selection) {
			dish := strings.TrimSpace(d.Text())
			if dish == "" || strings.EqualFold(dish, disjunctionMarker) {
				return
			}
			dishes = append(dishes, dish)
		})

		sections = append(sections, FoodSection{
			Label:  OwnText(item),
			Dishes: dishes,
		})
	})

	return MealBlock{
		Title:    title,
		Period:   PeriodFromTitle(title),
		Sections: sections,
	}
}

// PeriodFromTitle maps a meal title to midi when it names lunch and to soir
// otherwise.
func PeriodFromTitle(title string) menu.MealPeriod {
	lower := strings.ToLower(title)
	for _, kw := range lunchKeywords {
		if strings.Contains(lower, kw) {
			return menu.PeriodLunch
		}
	}
	return menu.PeriodDinner
}

// OwnText returns the trimmed text of the selection's direct text node
// children, ignoring the text of descendant elements.
func OwnText(s *goquery.Selection) string {
	return strings.TrimSpace(
		s.Contents().FilterFunction(func(_ int, c *goquery.Selection) bool {
			return len(c.Nodes) > 0 && c.Nodes[0].Type == html.TextNode
		}).Text(),
	)
}
