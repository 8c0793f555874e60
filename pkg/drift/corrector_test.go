// ABOUTME: Tests for drift detection and correction
// ABOUTME: Single-field passes per fact kind and batch aggregation

package drift

import (
	"strings"
	"testing"
	"time"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/facts"
)

func lockedPercent(v float64) facts.LockedFacts {
	return facts.LockedFacts{Numeric: &facts.Numeric{Value: v, Kind: facts.KindPercent}}
}

func boolPtr(b bool) *bool { return &b }

func TestNumericDriftCorrected(t *testing.T) {
	res := Correct("Enjoy 15% off today", lockedPercent(20), Options{})

	if !res.Drifted {
		t.Errorf("Expected drift to be flagged")
	}
	if !strings.Contains(res.Text, "20%") || strings.Contains(res.Text, "15%") {
		t.Errorf("Expected 20%% in place of 15%%, got %q", res.Text)
	}
	if len(res.Corrections) != 1 || res.Corrections[0].Found != "15%" {
		t.Errorf("Unexpected corrections: %+v", res.Corrections)
	}
}

func TestNumericNoDrift(t *testing.T) {
	text := "Enjoy 20% off today"
	res := Correct(text, lockedPercent(20), Options{})
	if res.Drifted {
		t.Errorf("Expected no drift")
	}
	if res.Text != text {
		t.Errorf("Text should be unchanged, got %q", res.Text)
	}
}

func TestNumericReplacesAllMatches(t *testing.T) {
	res := Correct("Take 15% off. Yes, 15 percent!", lockedPercent(20), Options{})
	if strings.Contains(res.Text, "15") {
		t.Errorf("Every percentage should be rewritten, got %q", res.Text)
	}
	if strings.Count(res.Text, "20%") != 2 {
		t.Errorf("Expected two rewritten values, got %q", res.Text)
	}
}

func TestNumericUnitDrift(t *testing.T) {
	res := Correct("Save $15 on your order", lockedPercent(20), Options{})
	if !res.Drifted || res.Text != "Save 20% on your order" {
		t.Errorf("Currency vs percent is drift, got %q (drifted=%v)", res.Text, res.Drifted)
	}
}

func TestNumericAbsentIsNotDrift(t *testing.T) {
	res := Correct("Fresh looks for spring", lockedPercent(20), Options{})
	if res.Drifted {
		t.Errorf("A fact the model did not restate is not drift")
	}
}

func TestDateDriftKeepsFamily(t *testing.T) {
	locked := facts.LockedFacts{Expires: &facts.Date{Year: 2025, Month: time.March, Day: 15}}

	cases := map[string]string{
		"Ends March 20, 2025.":        "Ends March 15, 2025.",
		"Ends Mar 20!":                "Ends Mar 15, 2025!",
		"Valid until 3/20/2025":       "Valid until 3/15/2025",
		"Expires 2025-03-20 midnight": "Expires 2025-03-15 midnight",
		"Ends March 15":               "Ends March 15",
	}
	for in, want := range cases {
		res := Correct(in, locked, Options{})
		if res.Text != want {
			t.Errorf("%q: expected %q, got %q", in, want, res.Text)
		}
		if res.Drifted != (in != want) {
			t.Errorf("%q: unexpected drift flag %v", in, res.Drifted)
		}
	}
}

func TestRestrictionRelaxed(t *testing.T) {
	locked := facts.LockedFacts{Restricted: boolPtr(false)}

	cases := map[string]string{
		"20% off, new customers only!":          "20% off!",
		"New customers only. Enjoy 20% off.":    "Enjoy 20% off.",
		"20% off (first-time buyers only) now":  "20% off now",
		"Get 20% off for new customers today.":  "Get 20% off today.",
	}
	for in, want := range cases {
		res := Correct(in, locked, Options{})
		if !res.Drifted {
			t.Errorf("%q: expected drift", in)
		}
		if res.Text != want {
			t.Errorf("%q: expected %q, got %q", in, want, res.Text)
		}
	}
}

func TestRestrictionNotSynthesized(t *testing.T) {
	locked := facts.LockedFacts{Restricted: boolPtr(true)}
	text := "20% off everything"
	res := Correct(text, locked, Options{})
	if res.Drifted || res.Text != text {
		t.Errorf("Missing restriction must not be injected into a field, got %+v", res)
	}
}

func TestCTAShortFieldReplaced(t *testing.T) {
	locked := facts.LockedFacts{CTA: "Shop now"}
	res := Correct("Buy today!", locked, Options{CheckCTA: true})
	if res.Text != "Shop now" || !res.Drifted {
		t.Errorf("Short CTA field should be replaced verbatim, got %+v", res)
	}
}

func TestCTATrailingPhraseReplaced(t *testing.T) {
	locked := facts.LockedFacts{CTA: "Shop now"}
	in := "Spring is here and everything in store is 20% off this week. Grab yours before it is gone!"
	res := Correct(in, locked, Options{CheckCTA: true})

	want := "Spring is here and everything in store is 20% off this week. Shop now!"
	if res.Text != want {
		t.Errorf("Expected %q, got %q", want, res.Text)
	}
	if !res.Corrections[0].Applied {
		t.Errorf("Trailing CTA correction should be applied")
	}
}

func TestCTAUntouchedWhenPresentOrNotChecked(t *testing.T) {
	locked := facts.LockedFacts{CTA: "Shop now"}
	if res := Correct("Big sale. SHOP NOW!", locked, Options{CheckCTA: true}); res.Drifted {
		t.Errorf("Present CTA is not drift")
	}
	if res := Correct("Buy today!", locked, Options{}); res.Drifted {
		t.Errorf("CTA check only runs on CTA-bearing fields")
	}
}

func TestCTADetectedWithoutTrailingPhrase(t *testing.T) {
	locked := facts.LockedFacts{CTA: "Shop now"}
	in := "Our spring collection brings bright colors and light fabrics to every room."
	res := Correct(in, locked, Options{CheckCTA: true})
	if !res.Drifted || res.Text != in {
		t.Errorf("Expected detected but unapplied CTA drift, got %+v", res)
	}
	if res.Corrections[0].Applied {
		t.Errorf("Correction without a rewrite must not be marked applied")
	}
}

func TestSequentialCorrections(t *testing.T) {
	locked := facts.LockedFacts{
		Numeric: &facts.Numeric{Value: 20, Kind: facts.KindPercent},
		Expires: &facts.Date{Month: time.March, Day: 15},
	}
	res := Correct("Take 25% off until 3/30", locked, Options{})
	if res.Text != "Take 20% off until 3/15" {
		t.Errorf("Expected both facts corrected, got %q", res.Text)
	}
	if len(res.Corrections) != 2 {
		t.Errorf("Expected 2 corrections, got %d", len(res.Corrections))
	}
}

func TestCorrectOutput(t *testing.T) {
	offer, _ := content.LookupTool(content.ToolOffer)
	locked := facts.LockedFacts{
		Numeric:    &facts.Numeric{Value: 20, Kind: facts.KindPercent},
		Restricted: boolPtr(true),
		CTA:        "Shop now",
	}
	slots := []content.Slot{
		{Label: "headline", Text: "Spring sale: 30% off"},
		{Label: "body", Text: "Fresh styles for everyone."},
		{Label: "cta", Text: "Buy today"},
		{Label: "post:instagram", Text: "Spring is here. Shop now and save 20%."},
	}

	out, rep := CorrectOutput(offer, slots, locked)

	if slots[0].Text != "Spring sale: 30% off" {
		t.Errorf("Input slots must not be modified")
	}
	if out[0].Text != "Spring sale: 20% off" {
		t.Errorf("Headline not corrected: %q", out[0].Text)
	}
	if out[2].Text != "Shop now" {
		t.Errorf("CTA not corrected: %q", out[2].Text)
	}
	if out[1].Text != slots[1].Text {
		t.Errorf("Body should be unchanged: %q", out[1].Text)
	}
	if len(rep.Fields) != 2 {
		t.Errorf("Expected 2 drifted fields, got %d", len(rep.Fields))
	}
	if len(rep.Missing) != 1 || rep.Missing[0].Kind != KindRestriction {
		t.Errorf("Expected missing restriction to be detected, got %+v", rep.Missing)
	}
	if !rep.Drifted() || rep.Message() != MessageCorrected {
		t.Errorf("Expected corrected message")
	}
}

func TestReportMessageForUnappliedDrift(t *testing.T) {
	offer, _ := content.LookupTool(content.ToolOffer)
	restricted := true
	slots := []content.Slot{
		{Label: "headline", Text: "Spring sale"},
		{Label: "body", Text: "Fresh pastries every morning."},
	}

	out, rep := CorrectOutput(offer, slots, facts.LockedFacts{Restricted: &restricted})
	if !rep.Drifted() || rep.Corrected() {
		t.Fatalf("Expected detected but unapplied drift, got %+v", rep)
	}
	if rep.Message() != MessageReview {
		t.Errorf("Expected review message, got %q", rep.Message())
	}
	for i := range slots {
		if out[i].Text != slots[i].Text {
			t.Errorf("Slot %d should be unchanged: %q", i, out[i].Text)
		}
	}
}

func TestCorrectOutputClean(t *testing.T) {
	job, _ := content.LookupTool(content.ToolJob)
	slots := []content.Slot{{Label: "title", Text: "Barista"}, {Label: "cta", Text: "Apply today"}}

	out, rep := CorrectOutput(job, slots, facts.LockedFacts{CTA: "Apply today"})
	if rep.Drifted() || rep.Message() != MessageKept {
		t.Errorf("Expected no drift, got %+v", rep)
	}
	if out[1].Text != "Apply today" {
		t.Errorf("Unexpected rewrite: %q", out[1].Text)
	}
}
