package household

import (
	"strings"
	"time"
)

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// ParseDOB parses a stored birth date. Legacy rows mix ISO dates, timestamps
// and day-first formats.
func ParseDOB(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age returns whole years between dob and now. Missing, unparseable or
// future dates count as 0.
func Age(dob string, now time.Time) int {
	t, ok := ParseDOB(dob)
	if !ok {
		return 0
	}
	y := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		y--
	}
	if y < 0 {
		y = 0
	}
	return y
}
