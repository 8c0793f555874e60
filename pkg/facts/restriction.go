// ABOUTME: Restriction flag extraction ("new customers only" and synonyms)
// ABOUTME: Presence of any vocabulary phrase means the offer is restricted

package facts

import "regexp"

// Restriction vocabulary. Matching is case-insensitive and tolerant of
// hyphen/space variants; it is a presence test, not exact equality.
var restrictionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:valid\s+)?(?:for\s+)?new\s+(?:customers?|clients?|members?|subscribers?)\s+only\b`),
	regexp.MustCompile(`(?i)\b(?:valid\s+)?for\s+new\s+(?:customers?|clients?|members?|subscribers?)\b`),
	regexp.MustCompile(`(?i)\b(?:for\s+)?first[-\s]time\s+(?:customers?|buyers?|shoppers?|clients?)(?:\s+only)?\b`),
	regexp.MustCompile(`(?i)\bfirst\s+(?:order|purchase|visit)\s+only\b`),
}

// ExtractRestriction reports whether text states a new-customer restriction
func ExtractRestriction(text string) bool {
	for _, re := range restrictionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// RestrictionSpans returns every restriction phrase in text as [start, end) pairs
func RestrictionSpans(text string) [][2]int {
	return allSpans(restrictionPatterns, text)
}
