package services

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultCountryCode is used when a Registry is built without one.
const DefaultCountryCode = "970"

var (
	reLetters = regexp.MustCompile(`[A-Za-z]`)
	// Only allow digits, spaces, +, -, (, )
	reAllowed = regexp.MustCompile(`^[0-9+\-\s\(\)]+$`)
)

// NormPhone normalizes a phone number to +<cc><national> form.
// Rules: strip spaces/dashes/parens; 00.. -> +..; <cc>.. -> +<cc>..; 0.. -> +<cc>..; ensure leading +.
// Anything that is not a phone number comes back empty.
func NormPhone(p, cc string) string {
	s := strings.TrimSpace(p)
	if s == "" || reLetters.MatchString(s) || !reAllowed.MatchString(s) {
		return ""
	}
	if cc == "" {
		cc = DefaultCountryCode
	}

	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\n", "", "\r", "")
	s = repl.Replace(s)

	switch {
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "+"):
	case strings.HasPrefix(s, cc):
		s = "+" + s
	case strings.HasPrefix(s, "0"):
		s = "+" + cc + s[1:]
	default:
		s = "+" + s
	}
	if len(digitsOnly(s)) < 7 {
		return ""
	}
	return s
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normOptional keeps a blank phone blank and rejects one that cannot be
// normalized.
func normOptional(field, raw, cc string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	n := NormPhone(raw, cc)
	if n == "" {
		return "", invalid(field, "invalid phone number: "+raw)
	}
	return n, nil
}
