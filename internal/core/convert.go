package core

// convert.go turns the loosely formatted strings people type into sheets
// into typed values, and back.
//
// Dates are day-first ("15-03-2024"). Users also type "15/3/2024" or
// "15.03.24", so separators are normalized before parsing and two-digit
// years are resolved against TwoDigitYearPivot from the caller's clock. ISO dates are accepted as a
// fallback. Dates are always written back as dd-mm-yyyy.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical layout for stored dates (dd-mm-yyyy).
const DateLayout = "02-01-2006"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{"2-1-2006", "2006-1-2"}
	twoDigitYearLayouts  = []string{"2-1-06"}
)

var dateSeparators = strings.NewReplacer("/", "-", ".", "-", " ", "")

var isbnSeparators = regexp.MustCompile(`[-_]`)

// ParseDate parses a day-first date against the wall clock. The second
// result is false for empty or unparseable input.
func ParseDate(s string) (time.Time, bool) {
	return ParseDateAt(s, time.Now())
}

// ParseDateAt is ParseDate with two-digit years resolved relative to now.
func ParseDateAt(s string, now time.Time) (time.Time, bool) {
	s = dateSeparators.Replace(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := now.Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatDate renders t in the stored dd-mm-yyyy layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseInt parses a base-10 integer, tolerating surrounding whitespace.
func ParseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeISBN strips '-' and '_' separators.
func NormalizeISBN(s string) string {
	return isbnSeparators.ReplaceAllString(strings.TrimSpace(s), "")
}

// truncateDay returns the calendar date of t as midnight UTC, which is
// comparable with ParseDate results.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
