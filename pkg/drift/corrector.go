// ABOUTME: Drift detection and correction against locked facts
// ABOUTME: Rewrites restated facts that contradict the locked values, one fact kind at a time

package drift

import (
	"regexp"
	"strings"

	"github.com/nainya/copyforge/pkg/facts"
)

// Kind names the fact a correction concerns
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDate        Kind = "date"
	KindRestriction Kind = "restriction"
	KindCTA         Kind = "cta"
)

// DefaultShortFieldWords is the word count up to which a CTA-bearing field
// counts as "just a CTA" and is replaced verbatim.
const DefaultShortFieldWords = 6

// Correction records one detected drift
type Correction struct {
	Kind    Kind   `json:"kind"`
	Found   string `json:"found"`   // What the text stated ("" when the fact was missing)
	Locked  string `json:"locked"`  // The locked value
	Applied bool   `json:"applied"` // False when detected but left as-is
}

// Result is the outcome of correcting one field
type Result struct {
	Text        string       `json:"text"`
	Drifted     bool         `json:"drifted"`
	Corrections []Correction `json:"corrections,omitempty"`
}

// Options tune a single-field pass
type Options struct {
	CheckCTA        bool // Field is CTA-bearing
	ShortFieldWords int  // Zero uses DefaultShortFieldWords
}

// Correct checks text against every locked slot and rewrites contradicting
// substrings. Checks run in a fixed order (numeric, date, restriction, CTA),
// each seeing the output of the previous one.
func Correct(text string, locked facts.LockedFacts, opts Options) Result {
	res := Result{Text: text}
	if opts.ShortFieldWords <= 0 {
		opts.ShortFieldWords = DefaultShortFieldWords
	}

	if locked.Numeric != nil {
		res.apply(correctNumeric(res.Text, *locked.Numeric))
	}
	if locked.Expires != nil {
		res.apply(correctDate(res.Text, *locked.Expires))
	}
	if locked.Restricted != nil && !*locked.Restricted {
		res.apply(relaxRestriction(res.Text))
	}
	if opts.CheckCTA && strings.TrimSpace(locked.CTA) != "" {
		res.apply(correctCTA(res.Text, strings.TrimSpace(locked.CTA), opts.ShortFieldWords))
	}
	return res
}

func (r *Result) apply(text string, c *Correction) {
	if c == nil {
		return
	}
	r.Text = text
	r.Drifted = true
	r.Corrections = append(r.Corrections, *c)
}

func correctNumeric(text string, locked facts.Numeric) (string, *Correction) {
	found, ok := facts.ExtractNumeric(text)
	if !ok || found == locked {
		return text, nil
	}
	out := replaceSpans(text, facts.NumericSpans(text, found.Kind), func(string) string {
		return locked.String()
	})
	return out, &Correction{Kind: KindNumeric, Found: found.String(), Locked: locked.String(), Applied: true}
}

func correctDate(text string, locked facts.Date) (string, *Correction) {
	var spans [][2]int
	var renders []string
	var first string
	for _, m := range facts.FindDates(text) {
		if m.Date.Same(locked) {
			continue
		}
		if first == "" {
			first = text[m.Start:m.End]
		}
		spans = append(spans, [2]int{m.Start, m.End})
		renders = append(renders, locked.Render(m.Family, m.Abbrev))
	}
	if len(spans) == 0 {
		return text, nil
	}
	i := 0
	out := replaceSpans(text, spans, func(string) string {
		r := renders[i]
		i++
		return r
	})
	return out, &Correction{Kind: KindDate, Found: first, Locked: locked.String(), Applied: true}
}

// relaxRestriction removes restriction phrases from text that is locked as
// unrestricted.
func relaxRestriction(text string) (string, *Correction) {
	spans := facts.RestrictionSpans(text)
	if len(spans) == 0 {
		return text, nil
	}
	found := text[spans[0][0]:spans[0][1]]
	out := tidy(replaceSpans(text, spans, func(string) string { return "" }))
	return out, &Correction{Kind: KindRestriction, Found: found, Locked: "unrestricted", Applied: true}
}

var ctaVerbs = `shop|buy|order|book|call|visit|sign\s+up|join|get|claim|apply|learn\s+more|try|start|download|subscribe|redeem|grab|reserve|discover|explore|register|contact|schedule|tap|click|use\s+code|save`

// A trailing CTA-shaped phrase: the last sentence, starting with an imperative CTA verb
var trailingCTA = regexp.MustCompile(`(?i)(?:^|[.!?]\s+|\s[-–—]\s+|\n\s*)((?:` + ctaVerbs + `)\b[^.!?\n]*([.!?]*))\s*$`)

func correctCTA(text, cta string, shortWords int) (string, *Correction) {
	if facts.ContainsCTA(text, cta) {
		return text, nil
	}
	c := &Correction{Kind: KindCTA, Locked: cta}

	if len(strings.Fields(text)) <= shortWords {
		c.Found = strings.TrimSpace(text)
		c.Applied = true
		return cta, c
	}

	loc := trailingCTA.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, c
	}
	c.Found = text[loc[2]:loc[3]]
	replacement := cta
	if punct := text[loc[4]:loc[5]]; punct != "" && !strings.ContainsAny(cta[len(cta)-1:], ".!?") {
		replacement += punct
	}
	c.Applied = true
	return text[:loc[2]] + replacement + text[loc[3]:], c
}

// replaceSpans rewrites ordered, non-overlapping spans of text
func replaceSpans(text string, spans [][2]int, with func(string) string) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s[0]])
		b.WriteString(with(text[s[0]:s[1]]))
		prev = s[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

var tidyRules = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`\(\s*\)`), ""},
	{regexp.MustCompile(`[ \t]+([,.!?;:])`), "$1"},
	{regexp.MustCompile(`[,;:]\s*([.!?])`), "$1"},
	{regexp.MustCompile(`([,;:])[,;:]+`), "$1"},
	{regexp.MustCompile(`\s[-–—]\s*([.!?])`), "$1"},
	{regexp.MustCompile(`[ \t]{2,}`), " "},
	{regexp.MustCompile(`^[\s,;:.!?\-–—]+`), ""},
	{regexp.MustCompile(`[\s,;:\-–—]+$`), ""},
}

// tidy repairs punctuation and spacing left behind by removed phrases
func tidy(s string) string {
	for _, r := range tidyRules {
		s = r.re.ReplaceAllString(s, r.with)
	}
	return strings.TrimSpace(s)
}
