package domain

import (
	"math"
	"strings"
	"time"
)

// dateLayouts lists the ISO-8601 prefixes the API emits, longest first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate parses an observation date in any of its ISO-8601 prefix forms.
// Partial dates resolve to the start of the period in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// dateDistance returns the absolute distance between two parsed dates. Dates
// that do not parse are infinitely far from everything.
func dateDistance(a time.Time, aok bool, b string) float64 {
	bt, bok := ParseDate(b)
	if !aok || !bok {
		return math.Inf(1)
	}
	return math.Abs(float64(a.Sub(bt)))
}

// InDateRange reports whether date falls inside the inclusive [start, end]
// range. Each bound is compared at its own precision, so an end of "2021"
// includes "2021-12". Empty bounds are open.
func InDateRange(date, start, end string) bool {
	if date == "" {
		return false
	}
	if start != "" && truncate(date, len(start)) < start {
		return false
	}
	if end != "" && truncate(date, len(end)) > end {
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
