// ABOUTME: Numeric offer value extraction (percentages and currency amounts)
// ABOUTME: Percentages take priority over currency; the first match wins

package facts

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// NumericKind is the unit of a numeric offer value
type NumericKind string

const (
	KindPercent  NumericKind = "percent"
	KindCurrency NumericKind = "currency"
)

// Numeric is an offer value with its unit
type Numeric struct {
	Value float64     `json:"value"`
	Kind  NumericKind `json:"kind"`
}

// String renders the value the way it is written in copy ("20%", "$15", "$9.99")
func (n Numeric) String() string {
	switch n.Kind {
	case KindCurrency:
		if n.Value == float64(int64(n.Value)) {
			return "$" + strconv.FormatInt(int64(n.Value), 10)
		}
		return "$" + strconv.FormatFloat(n.Value, 'f', 2, 64)
	default:
		return strconv.FormatFloat(n.Value, 'f', -1, 64) + "%"
	}
}

// Recognized numeric patterns per kind, in priority order. Group 1 holds the number.
var numericPatterns = map[NumericKind][]*regexp.Regexp{
	KindPercent: {
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s?%`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s?percent\b`),
	},
	KindCurrency: {
		regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`),
	},
}

var numericPriority = []NumericKind{KindPercent, KindCurrency}

// ExtractNumeric returns the first percentage in text, or failing that the
// first currency amount.
func ExtractNumeric(text string) (Numeric, bool) {
	for _, kind := range numericPriority {
		loc := firstMatch(numericPatterns[kind], text)
		if loc == nil {
			continue
		}
		v, err := parseNumber(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		return Numeric{Value: v, Kind: kind}, true
	}
	return Numeric{}, false
}

// NumericSpans returns every match of the given kind as [start, end) pairs
// in text order
func NumericSpans(text string, kind NumericKind) [][2]int {
	return allSpans(numericPatterns[kind], text)
}

// ParseNumeric reads a single value such as "20%", "20 percent" or "$15"
func ParseNumeric(s string) (Numeric, bool) {
	return ExtractNumeric(strings.TrimSpace(s))
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// firstMatch returns the submatch indexes of the earliest match across patterns
func firstMatch(patterns []*regexp.Regexp, text string) []int {
	var best []int
	for _, re := range patterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best[0] {
			best = loc
		}
	}
	return best
}

// allSpans merges the matches of every pattern into ordered, non-overlapping spans
func allSpans(patterns []*regexp.Regexp, text string) [][2]int {
	var spans [][2]int
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	return mergeSpans(spans)
}

func mergeSpans(spans [][2]int) [][2]int {
	if len(spans) < 2 {
		return spans
	}
	slices.SortFunc(spans, func(a, b [2]int) int { return cmp.Compare(a[0], b[0]) })
	out := make([][2]int, 0, len(spans))
	out = append(out, spans[0])
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s[0] < last[1] {
			if s[1] > last[1] {
				last[1] = s[1]
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
