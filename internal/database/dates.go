package database

import "time"

// Today returns today's date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// FormatTime renders a timestamp the way published_at is stored.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses a stored published_at value. A nil or unparseable value
// returns the zero time and false.
func ParseTime(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateDisplay formats a dose date for display, e.g. "Feb 06, 2026".
func FormatDateDisplay(doseDate string) string {
	d, err := time.Parse("2006-01-02", doseDate)
	if err != nil {
		return doseDate
	}
	return d.Format("Jan 02, 2006")
}
