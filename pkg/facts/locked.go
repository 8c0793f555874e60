// ABOUTME: Locked facts carried from one generation into the next
// ABOUTME: Captured from effective content; an absent slot means no constraint

package facts

import "strings"

// LockedFacts constrains a regeneration. Nil/empty slots carry no constraint.
type LockedFacts struct {
	Numeric    *Numeric `json:"numeric,omitempty"`
	Restricted *bool    `json:"restricted,omitempty"`
	Expires    *Date    `json:"expires,omitempty"`
	CTA        string   `json:"cta,omitempty"`
}

// IsEmpty reports whether no slot is locked
func (lf LockedFacts) IsEmpty() bool {
	return lf.Numeric == nil && lf.Restricted == nil && lf.Expires == nil && strings.TrimSpace(lf.CTA) == ""
}

// Capture locks facts from effective texts in display order. The first
// numeric value and the first date found win. The restriction slot records
// whether any text states a restriction. cta is the effective value of the
// call-to-action slot, locked verbatim when non-empty.
func Capture(texts []string, cta string) LockedFacts {
	var lf LockedFacts
	if len(texts) == 0 && strings.TrimSpace(cta) == "" {
		return lf
	}

	restricted := false
	for _, text := range texts {
		if lf.Numeric == nil {
			if n, ok := ExtractNumeric(text); ok {
				lf.Numeric = &n
			}
		}
		if lf.Expires == nil {
			if d, ok := ExtractDate(text); ok {
				lf.Expires = &d
			}
		}
		if ExtractRestriction(text) {
			restricted = true
		}
	}
	if len(texts) > 0 {
		lf.Restricted = &restricted
	}
	lf.CTA = strings.TrimSpace(cta)
	return lf
}

// ContainsCTA reports whether text contains cta, ignoring case. An empty
// cta is trivially contained.
func ContainsCTA(text, cta string) bool {
	cta = strings.TrimSpace(cta)
	if cta == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(cta))
}
