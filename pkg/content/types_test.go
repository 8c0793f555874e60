// ABOUTME: Tests for the content model
// ABOUTME: Effective values, edit badges, brief snapshots and selections

package content

import (
	"encoding/json"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestEffective(t *testing.T) {
	cases := []struct {
		name   string
		edited *string
		want   string
		badge  bool
	}{
		{"no override", nil, "Acme Bold", false},
		{"empty override", strPtr(""), "Acme Bold", false},
		{"same as generated", strPtr("Acme Bold"), "Acme Bold", false},
		{"real override", strPtr("Sunset Logo"), "Sunset Logo", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it := Item{Generated: "Acme Bold", Edited: tc.edited}
			if got := it.Effective(); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
			if got := it.IsEditedVisible(); got != tc.badge {
				t.Errorf("Expected badge %v, got %v", tc.badge, got)
			}
		})
	}
}

func TestStaleFlagDoesNotShowBadge(t *testing.T) {
	it := Item{
		Generated:   "Acme Bold",
		Edited:      strPtr("Acme Bold"),
		EditedFlags: map[Field]bool{FieldName: true},
	}
	if it.IsEditedVisible() {
		t.Errorf("Badge must be recomputed from values, not the flag")
	}
	if !it.Flagged(FieldName) {
		t.Errorf("Flag should still record the touch")
	}
}

func TestWithEditedNormalizes(t *testing.T) {
	now := time.Now()
	it := Item{ID: "a", Generated: "Hello"}

	if got := it.WithEdited("Hello", now); got.Edited != nil {
		t.Errorf("Equal-to-generated edit should normalize to nil")
	}
	if got := it.WithEdited("", now); got.Edited != nil {
		t.Errorf("Empty edit should normalize to nil")
	}
	got := it.WithEdited("Hi", now)
	if got.Edited == nil || *got.Edited != "Hi" {
		t.Fatalf("Expected override Hi")
	}
	if it.Edited != nil {
		t.Errorf("Receiver must not be mutated")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	it := Item{
		Edited:      strPtr("x"),
		EditedFlags: map[Field]bool{FieldName: true},
		Attributes:  map[string]string{"style": "minimal"},
	}
	c := it.Clone()
	*c.Edited = "y"
	c.EditedFlags[FieldFavorite] = true
	c.Attributes["style"] = "bold"

	if *it.Edited != "x" || it.EditedFlags[FieldFavorite] || it.Attributes["style"] != "minimal" {
		t.Errorf("Clone aliases the original: %+v", it)
	}
}

func TestBriefSnapshot(t *testing.T) {
	b, err := NewBrief(map[string]any{"offer": "20% off", "platforms": []any{"instagram", "x"}})
	if err != nil {
		t.Fatalf("Failed to build brief: %v", err)
	}

	snap := b.Snapshot()
	m := snap.AsMap()
	m["offer"] = "changed"

	if snap.String("offer") != "20% off" {
		t.Errorf("AsMap must return a copy")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Failed to marshal brief: %v", err)
	}
	var back Brief
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Failed to unmarshal brief: %v", err)
	}
	if back.String("offer") != "20% off" || back.Len() != 2 {
		t.Errorf("Brief did not survive JSON: %s", data)
	}

	if _, err := NewBrief(map[string]any{"bad": make(chan int)}); err == nil {
		t.Errorf("Expected error for non-JSON value")
	}
}

func TestSelectionResolve(t *testing.T) {
	vs := &VersionSet{Items: []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	if got := NewSelection().Resolve(vs); len(got) != 3 {
		t.Errorf("Empty selection should default to all items, got %d", len(got))
	}

	got := NewSelection("c", "a", "zzz").Resolve(vs)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Expected [a c] in display order, got %+v", got)
	}
}

func TestToolCTABearing(t *testing.T) {
	offer, _ := LookupTool(ToolOffer)
	for label, want := range map[string]bool{
		"cta":            true,
		"post:instagram": true,
		"headline":       false,
		"body":           false,
	} {
		if got := offer.IsCTABearing(label); got != want {
			t.Errorf("%s: expected %v, got %v", label, want, got)
		}
	}

	logo, _ := LookupTool(ToolLogo)
	if logo.DefaultField() != FieldName || FieldName.AllowsEmpty() {
		t.Errorf("Logo names must reject empty commits")
	}
}
