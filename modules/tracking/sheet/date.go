package sheet

import (
	"strings"
	"time"
)

// monthTypos maps locale spellings seen in the sheets to Go month
// abbreviations.
var monthTypos = map[string]string{
	"Sept": "Sep",
	"Okt":  "Oct",
	"Des":  "Dec",
}

var dateLayouts = []string{
	"2 Jan 06",
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2Jan",
	"2006/01/02",
}

// fallbackLayouts is the general-parser net for values the literal layouts
// miss.
var fallbackLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"1/2/2006",
	time.RFC3339,
}

// ParseDate parses a human-entered plan date. Returns the zero time and false
// when no known format matches; callers treat that as "row not matched", not
// as an error.
func ParseDate(value string) (time.Time, bool) {
	normalized := value
	for typo, correct := range monthTypos {
		normalized = strings.ReplaceAll(normalized, typo, correct)
	}
	trimmed := strings.TrimSpace(normalized)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			if t.Year() == 0 {
				// Year-less "15Sep" style entries mean the current year.
				now := time.Now()
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
