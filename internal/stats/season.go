package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSeason normalises a season label to the later calendar year of the season.
// Accepted forms are "1998-99" (first year plus one), "2016", and an int.
func ParseSeason(season any) (int, error) {
	switch v := season.(type) {
	case int:
		return v, nil
	case string:
		return parseSeasonLabel(v)
	default:
		return 0, &SeasonFormatError{Label: fmt.Sprint(season)}
	}
}

func parseSeasonLabel(label string) (int, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, &SeasonFormatError{Label: label}
	}

	if isDigits(s) {
		year, err := strconv.Atoi(s)
		if err != nil {
			return 0, &SeasonFormatError{Label: label}
		}
		return year, nil
	}

	if first, _, ok := strings.Cut(s, "-"); ok && isDigits(first) {
		year, err := strconv.Atoi(first)
		if err != nil {
			return 0, &SeasonFormatError{Label: label}
		}
		return year + 1, nil
	}

	return 0, &SeasonFormatError{Label: label}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SeasonLabel renders a season year in the site's "1998-99" form.
func SeasonLabel(year int) string {
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}
