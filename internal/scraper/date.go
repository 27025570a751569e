package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"restou/internal/menu"
)

// ErrUnrecognizedDateFormat is returned when a day title does not carry a
// "<day> <month> <year>" phrase with a known French month.
var ErrUnrecognizedDateFormat = errors.New("unrecognized date format")

var frMonths = map[string]string{
	"janvier":   "01",
	"février":   "02",
	"mars":      "03",
	"avril":     "04",
	"mai":       "05",
	"juin":      "06",
	"juillet":   "07",
	"août":      "08",
	"septembre": "09",
	"octobre":   "10",
	"novembre":  "11",
	"décembre":  "12",
}

// \p{L} so that accented months (février, août, décembre) match.
var reDatePhrase = regexp.MustCompile(`(?:^|\D)(\d{1,2})(?:er)?\s+(\p{L}+)\s+(\d{4})(?:\D|$)`)

// FindDatePhrase isolates the "<day> <month> <year>" run of a title such as
// "Menu du lundi 14 avril 2025". "1er" is returned as "1".
func FindDatePhrase(text string) (string, bool) {
	m := reDatePhrase.FindStringSubmatch(text)
	if len(m) != 4 {
		return "", false
	}
	return m[1] + " " + m[2] + " " + m[3], true
}

// ParseFrenchDate converts "14 avril 2025" into "2025-04-14".
func ParseFrenchDate(phrase string) (string, error) {
	parts := strings.Fields(phrase)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 tokens in %q, got %d", ErrUnrecognizedDateFormat, phrase, len(parts))
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: invalid day %q", ErrUnrecognizedDateFormat, parts[0])
	}

	month, ok := frMonths[strings.ToLower(parts[1])]
	if !ok {
		return "", fmt.Errorf("%w: unknown month %q", ErrUnrecognizedDateFormat, parts[1])
	}

	if _, err := strconv.Atoi(parts[2]); err != nil || len(parts[2]) != 4 {
		return "", fmt.Errorf("%w: invalid year %q", ErrUnrecognizedDateFormat, parts[2])
	}

	iso := fmt.Sprintf("%s-%s-%02d", parts[2], month, day)
	if _, err := time.Parse(menu.DateLayout, iso); err != nil {
		return "", fmt.Errorf("%w: %q is not a calendar date", ErrUnrecognizedDateFormat, phrase)
	}
	return iso, nil
}
