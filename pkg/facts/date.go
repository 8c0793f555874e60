// ABOUTME: Calendar date extraction for expiration dates in offer copy
// ABOUTME: Month-name, slash-delimited and ISO forms; the earliest match wins

package facts

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateFamily is the written form a date was recognized in
type DateFamily int

const (
	FamilyMonthName DateFamily = iota // "March 15", "Mar 15, 2025"
	FamilySlash                       // "3/15", "3/15/2025"
	FamilyISO                         // "2025-03-15"
)

// Date is a calendar date whose year may be unknown (0)
type Date struct {
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Same reports whether two dates name the same day. An unknown year on
// either side matches any year.
func (d Date) Same(o Date) bool {
	if d.Month != o.Month || d.Day != o.Day {
		return false
	}
	return d.Year == 0 || o.Year == 0 || d.Year == o.Year
}

// Render writes d in the given family. Abbreviated month names are used when
// abbrev is set. ISO needs a year and falls back to the month-name form.
func (d Date) Render(family DateFamily, abbrev bool) string {
	switch family {
	case FamilySlash:
		s := strconv.Itoa(int(d.Month)) + "/" + strconv.Itoa(d.Day)
		if d.Year != 0 {
			s += "/" + strconv.Itoa(d.Year)
		}
		return s
	case FamilyISO:
		if d.Year != 0 {
			return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		}
	}
	name := d.Month.String()
	if abbrev {
		name = name[:3]
	}
	s := name + " " + strconv.Itoa(d.Day)
	if d.Year != 0 {
		s += ", " + strconv.Itoa(d.Year)
	}
	return s
}

// String renders the month-name form
func (d Date) String() string {
	return d.Render(FamilyMonthName, false)
}

// DateMatch is one recognized date in a text
type DateMatch struct {
	Date   Date
	Family DateFamily
	Abbrev bool
	Start  int
	End    int
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

type datePattern struct {
	family DateFamily
	re     *regexp.Regexp
	parse  func(text string, loc []int) (Date, bool, bool)
}

// Recognized date patterns. New forms are added here without touching callers.
var datePatterns = []datePattern{
	{
		family: FamilyMonthName,
		re: regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`),
		parse: func(text string, loc []int) (Date, bool, bool) {
			word := strings.ToLower(text[loc[2]:loc[3]])
			m := months[word]
			day, _ := strconv.Atoi(text[loc[4]:loc[5]])
			year := 0
			if loc[6] >= 0 {
				year, _ = strconv.Atoi(text[loc[6]:loc[7]])
			}
			d := Date{Year: year, Month: m, Day: day}
			return d, word != strings.ToLower(m.String()), valid(d)
		},
	},
	{
		family: FamilySlash,
		re:     regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`),
		parse: func(text string, loc []int) (Date, bool, bool) {
			month, _ := strconv.Atoi(text[loc[2]:loc[3]])
			day, _ := strconv.Atoi(text[loc[4]:loc[5]])
			year := 0
			if loc[6] >= 0 {
				year, _ = strconv.Atoi(text[loc[6]:loc[7]])
				if year < 100 {
					year += 2000
				}
			}
			d := Date{Year: year, Month: time.Month(month), Day: day}
			return d, false, valid(d)
		},
	},
	{
		family: FamilyISO,
		re:     regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
		parse: func(text string, loc []int) (Date, bool, bool) {
			year, _ := strconv.Atoi(text[loc[2]:loc[3]])
			month, _ := strconv.Atoi(text[loc[4]:loc[5]])
			day, _ := strconv.Atoi(text[loc[6]:loc[7]])
			d := Date{Year: year, Month: time.Month(month), Day: day}
			return d, false, valid(d)
		},
	},
}

func valid(d Date) bool {
	return d.Month >= time.January && d.Month <= time.December && d.Day >= 1 && d.Day <= 31
}

// FindDates returns every recognized date in text order. Overlapping matches
// keep the one starting first.
func FindDates(text string) []DateMatch {
	var found []DateMatch
	for _, p := range datePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			d, abbrev, ok := p.parse(text, loc)
			if !ok {
				continue
			}
			found = append(found, DateMatch{Date: d, Family: p.family, Abbrev: abbrev, Start: loc[0], End: loc[1]})
		}
	}
	slices.SortStableFunc(found, func(a, b DateMatch) int { return cmp.Compare(a.Start, b.Start) })

	out := make([]DateMatch, 0, len(found))
	end := -1
	for _, m := range found {
		if m.Start < end {
			continue
		}
		out = append(out, m)
		end = m.End
	}
	return out
}

// ExtractDate returns the first recognized date in text, whichever pattern matched it
func ExtractDate(text string) (Date, bool) {
	all := FindDates(text)
	if len(all) == 0 {
		return Date{}, false
	}
	return all[0].Date, true
}

// ParseDate reads a single date such as "March 15", "3/15/2025" or "2025-03-15"
func ParseDate(s string) (Date, bool) {
	return ExtractDate(strings.TrimSpace(s))
}
