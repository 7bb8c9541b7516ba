package domain

import (
	"strings"
	"time"
)

// CanonicalDateLayout is the absolute-time format written to the index.
// UTC with millisecond precision.
const CanonicalDateLayout = "2006-01-02T15:04:05.000Z"

// acceptedDateLayouts are tried in order when normalising raw date values.
var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeDate parses a raw date value.
// Empty, whitespace-only and unparsable values all report false so that
// empty-string sentinels and true nulls are treated the same way.
func NormalizeDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in the canonical layout, or nil when absent.
func FormatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(CanonicalDateLayout)
	return &s
}

// CanonicalDate normalises a raw date string to its canonical form.
// Returns nil for empty or unparsable input.
func CanonicalDate(raw string) *string {
	t, ok := NormalizeDate(raw)
	if !ok {
		return nil
	}
	return FormatDate(&t)
}
