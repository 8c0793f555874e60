// ABOUTME: Tests for fact extraction
// ABOUTME: One table per fact kind plus locked-fact capture

package facts

import (
	"testing"
	"time"
)

func TestExtractNumeric(t *testing.T) {
	cases := []struct {
		text  string
		want  Numeric
		found bool
	}{
		{"Enjoy 20% off today", Numeric{20, KindPercent}, true},
		{"Take 12.5 percent off", Numeric{12.5, KindPercent}, true},
		{"Save $15 on your order", Numeric{15, KindCurrency}, true},
		{"Save $1,250.50 now", Numeric{1250.50, KindCurrency}, true},
		{"Save $10 or 25% on bundles", Numeric{25, KindPercent}, true},
		{"10% today, 30% tomorrow", Numeric{10, KindPercent}, true},
		{"Big savings all week", Numeric{}, false},
	}

	for _, tc := range cases {
		got, ok := ExtractNumeric(tc.text)
		if ok != tc.found {
			t.Errorf("%q: expected found=%v, got %v", tc.text, tc.found, ok)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %+v, got %+v", tc.text, tc.want, got)
		}
	}
}

func TestNumericString(t *testing.T) {
	for n, want := range map[Numeric]string{
		{20, KindPercent}:   "20%",
		{12.5, KindPercent}: "12.5%",
		{15, KindCurrency}:  "$15",
		{9.9, KindCurrency}: "$9.90",
	} {
		if got := n.String(); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestExtractRestriction(t *testing.T) {
	for text, want := range map[string]bool{
		"20% off, new customers only":         true,
		"Valid for New Customers this month":  true,
		"Exclusive to first-time buyers":      true,
		"First time shoppers only!":           true,
		"Applies to your first order only.":   true,
		"20% off for everyone":                false,
		"Our customers love the new lineup":   false,
	} {
		if got := ExtractRestriction(text); got != want {
			t.Errorf("%q: expected %v, got %v", text, want, got)
		}
	}
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		text  string
		want  Date
		found bool
	}{
		{"Offer ends March 15", Date{Month: time.March, Day: 15}, true},
		{"Ends Mar. 15th, 2025 at midnight", Date{2025, time.March, 15}, true},
		{"Valid through 3/15/2025", Date{2025, time.March, 15}, true},
		{"Valid through 12/1/25", Date{2025, time.December, 1}, true},
		{"Expires 2025-04-30", Date{2025, time.April, 30}, true},
		{"Through 4/30 or March 1", Date{Month: time.April, Day: 30}, true},
		{"Support 24/7", Date{}, false},
		{"No deadline", Date{}, false},
	}

	for _, tc := range cases {
		got, ok := ExtractDate(tc.text)
		if ok != tc.found {
			t.Errorf("%q: expected found=%v, got %v", tc.text, tc.found, ok)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %+v, got %+v", tc.text, tc.want, got)
		}
	}
}

func TestFindDatesFamilies(t *testing.T) {
	text := "Starts Jan 2, ends 3/15 or 2025-03-20"
	all := FindDates(text)
	if len(all) != 3 {
		t.Fatalf("Expected 3 dates, got %d", len(all))
	}
	want := []DateFamily{FamilyMonthName, FamilySlash, FamilyISO}
	for i, m := range all {
		if m.Family != want[i] {
			t.Errorf("Match %d: expected family %d, got %d", i, want[i], m.Family)
		}
	}
	if !all[0].Abbrev {
		t.Errorf("Jan should be recognized as abbreviated")
	}
	if got := text[all[1].Start:all[1].End]; got != "3/15" {
		t.Errorf("Expected span 3/15, got %q", got)
	}
}

func TestDateRender(t *testing.T) {
	d := Date{2025, time.March, 15}
	for _, tc := range []struct {
		family DateFamily
		abbrev bool
		want   string
	}{
		{FamilyMonthName, false, "March 15, 2025"},
		{FamilyMonthName, true, "Mar 15, 2025"},
		{FamilySlash, false, "3/15/2025"},
		{FamilyISO, false, "2025-03-15"},
	} {
		if got := d.Render(tc.family, tc.abbrev); got != tc.want {
			t.Errorf("Expected %s, got %s", tc.want, got)
		}
	}

	noYear := Date{Month: time.March, Day: 15}
	if got := noYear.Render(FamilyISO, false); got != "March 15" {
		t.Errorf("ISO without a year should fall back, got %s", got)
	}
	if !noYear.Same(d) {
		t.Errorf("Unknown year should match any year")
	}
	if (Date{2024, time.March, 15}).Same(d) {
		t.Errorf("Different years should not match")
	}
}

func TestContainsCTA(t *testing.T) {
	if !ContainsCTA("Ready? SHOP NOW and save.", "Shop now") {
		t.Errorf("CTA containment should ignore case")
	}
	if ContainsCTA("Ready? Buy today.", "Shop now") {
		t.Errorf("Missing CTA reported as contained")
	}
	if !ContainsCTA("anything", "  ") {
		t.Errorf("Empty CTA carries no constraint")
	}
}

func TestCapture(t *testing.T) {
	lf := Capture([]string{
		"Spring sale",
		"Enjoy 20% off everything until March 15. New customers only.",
		"Also $5 off shipping through 4/1",
	}, " Shop now ")

	if lf.Numeric == nil || *lf.Numeric != (Numeric{20, KindPercent}) {
		t.Errorf("Expected first numeric 20%%, got %+v", lf.Numeric)
	}
	if lf.Expires == nil || *lf.Expires != (Date{Month: time.March, Day: 15}) {
		t.Errorf("Expected first date March 15, got %+v", lf.Expires)
	}
	if lf.Restricted == nil || !*lf.Restricted {
		t.Errorf("Expected restriction to be locked on")
	}
	if lf.CTA != "Shop now" {
		t.Errorf("Expected trimmed CTA, got %q", lf.CTA)
	}

	plain := Capture([]string{"Hello"}, "")
	if plain.Numeric != nil || plain.Expires != nil || plain.CTA != "" {
		t.Errorf("Unexpected facts: %+v", plain)
	}
	if plain.Restricted == nil || *plain.Restricted {
		t.Errorf("Absent restriction should lock false")
	}

	if !Capture(nil, "").IsEmpty() {
		t.Errorf("Capture of nothing should be empty")
	}
}
