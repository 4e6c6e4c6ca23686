package match

import (
	"strings"
	"time"
)

// ParseDate parses the date strings the results page prints.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "02.11.2025", "2.11.2025", "02.11.25", "So., 02.11.2025"
func ParseDate(dateText string) time.Time {
	text := strings.TrimSpace(dateText)
	if text == "" {
		return time.Time{}
	}

	// Drop a leading weekday like "Sa." or "So.,"
	fields := strings.Fields(text)
	candidate := fields[len(fields)-1]

	// Try "02.11.2025" format
	t, err := time.Parse("02.01.2006", candidate)
	if err == nil {
		return t
	}

	// Try "2.11.2025" format (single digit day)
	t, err = time.Parse("2.1.2006", candidate)
	if err == nil {
		return t
	}

	// Try "02.11.25" format (two digit year)
	t, err = time.Parse("02.01.06", candidate)
	if err == nil {
		return t
	}

	// Try "2.11.25" format
	t, err = time.Parse("2.1.06", candidate)
	if err == nil {
		return t
	}

	// Could not parse, return zero time
	return time.Time{}
}

// IsRecent reports whether the match was played within the last N days.
// Returns true if days <= 0 (feature disabled) or the date is unparseable.
func (m *Match) IsRecent(days int) bool {
	if days <= 0 {
		return true
	}
	played := ParseDate(m.Date)
	if played.IsZero() {
		return true
	}
	return played.After(time.Now().AddDate(0, 0, -days))
}
