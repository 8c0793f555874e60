// ABOUTME: Drift correction over a whole regenerated batch
// ABOUTME: Every visible field gets the general checks; CTA-bearing fields also get the CTA check

package drift

import (
	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/facts"
)

const (
	MessageKept      = "Kept your details unchanged and refreshed the wording."
	MessageCorrected = "Some details drifted from your locked values and were corrected."
	MessageReview    = "Some details drifted from your locked values. Please review them."
)

// FieldReport is the correction result for one slot
type FieldReport struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Result Result `json:"result"`
}

// Report aggregates a batch pass
type Report struct {
	Fields []FieldReport `json:"fields,omitempty"`
	// Missing holds drift detected across the whole batch that is not tied to
	// one field and is never rewritten (a locked restriction nobody restates).
	Missing []Correction `json:"missing,omitempty"`
}

// Drifted reports whether any drift was detected in the batch
func (r Report) Drifted() bool {
	return len(r.Fields) > 0 || len(r.Missing) > 0
}

// Corrections flattens every correction in the batch
func (r Report) Corrections() []Correction {
	var out []Correction
	for _, f := range r.Fields {
		out = append(out, f.Result.Corrections...)
	}
	return append(out, r.Missing...)
}

// Corrected reports whether any correction rewrote text
func (r Report) Corrected() bool {
	for _, c := range r.Corrections() {
		if c.Applied {
			return true
		}
	}
	return false
}

// Message is the user-facing summary of the pass. Drift that was only
// detected asks for a review instead of claiming a correction.
func (r Report) Message() string {
	switch {
	case r.Corrected():
		return MessageCorrected
	case r.Drifted():
		return MessageReview
	}
	return MessageKept
}

// CorrectOutput runs Correct over every slot of a regenerated batch and
// returns corrected copies. The input slice is not modified.
func CorrectOutput(tool content.Tool, slots []content.Slot, locked facts.LockedFacts) ([]content.Slot, Report) {
	out := make([]content.Slot, len(slots))
	copy(out, slots)

	var rep Report
	if locked.IsEmpty() {
		return out, rep
	}

	restated := false
	for i, slot := range out {
		res := Correct(slot.Text, locked, Options{CheckCTA: tool.IsCTABearing(slot.Label)})
		if facts.ExtractRestriction(res.Text) {
			restated = true
		}
		if !res.Drifted {
			continue
		}
		out[i].Text = res.Text
		rep.Fields = append(rep.Fields, FieldReport{Index: i, Label: slot.Label, Result: res})
	}

	if locked.Restricted != nil && *locked.Restricted && !restated && len(out) > 0 {
		rep.Missing = append(rep.Missing, Correction{
			Kind:    KindRestriction,
			Locked:  "restricted",
			Applied: false,
		})
	}
	return out, rep
}
