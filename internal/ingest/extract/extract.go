// Package extract contains the format-independent field extraction
// primitives used by the source extractors. Every function is pure and
// tolerant: absence of a field is reported through the bool return, never
// as an error, and a malformed candidate is skipped rather than propagated.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// UK postcode: 1-2 letters, digit(s), optional letter, then digit + 2 letters.
	postcodeRegex = regexp.MustCompile(`(?i)\b([A-Z]{1,2}[0-9][0-9A-Z]?)\s*([0-9][A-Z]{2})\b`)

	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Common UK phone shapes, mobiles before landlines.
	phoneRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+44\s?7\d{3}|\(?07\d{3}\)?)[\s\-]?\d{3}[\s\-]?\d{3}`),
		regexp.MustCompile(`(?:\+44\s?\d{2,4}|\(?0\d{2,4}\)?)[\s\-]?\d{3,4}[\s\-]?\d{3,4}`),
	}

	bedroomsRegex = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:bed(?:room)?s?|br)\b`)
)

// datePattern pairs a finder regex with the time layout its matches parse as.
// Patterns are tried in order; a candidate that fails to parse (e.g. 31/02)
// is skipped, not surfaced as an error.
type datePattern struct {
	finder *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), "2/1/2006"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`), "2 January 2006"},
}

var ordinalSuffixRegex = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)`)

// Postcode returns the first UK postcode in text, upper-cased with a single
// space between the outward and inward parts.
func Postcode(text string) (string, bool) {
	m := postcodeRegex.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]) + " " + strings.ToUpper(m[2]), true
}

// Email returns the first email-shaped token in text, lower-cased.
func Email(text string) (string, bool) {
	m := emailRegex.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToLower(m), true
}

// Phone returns the first UK phone number in text with interior whitespace,
// dashes and parentheses stripped.
func Phone(text string) (string, bool) {
	for _, re := range phoneRegexes {
		if m := re.FindString(text); m != "" {
			cleaned := strings.Map(func(r rune) rune {
				if (r >= '0' && r <= '9') || r == '+' {
					return r
				}
				return -1
			}, m)
			return cleaned, true
		}
	}
	return "", false
}

// Date returns the first parseable calendar date in text. Each date pattern
// is tried in order; candidates that match the shape but are not valid dates
// are skipped.
func Date(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		for _, candidate := range p.finder.FindAllString(text, -1) {
			normalized := candidate
			if p.layout == "2 January 2006" {
				normalized = ordinalSuffixRegex.ReplaceAllString(candidate, "$1")
			}
			if t, err := time.Parse(p.layout, normalized); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Bedrooms returns the integer preceding a bed/bedroom/br token.
func Bedrooms(text string) (int, bool) {
	m := bedroomsRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SplitName splits a full name into first name and remainder.
// A single token becomes (token, ""); multiple tokens become
// (first, rest joined).
func SplitName(full string) (string, string) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}
