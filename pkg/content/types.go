// ABOUTME: Generated content data model
// ABOUTME: Version sets, items with an edit overlay, and edit flags

package content

import (
	"time"
)

// Field names an editable attribute of an item
type Field string

const (
	FieldName     Field = "name"     // Display name (logo concepts); may not be empty
	FieldText     Field = "text"     // Free-text body section; empty means "no override"
	FieldFavorite Field = "favorite" // Favorite marker; flag only, carries no text
)

// AllowsEmpty reports whether an empty commit on this field means "no override".
// Fields that reject emptiness surface a rejected-empty outcome instead.
func (f Field) AllowsEmpty() bool {
	return f != FieldName
}

// Item is one generated slot of a version set. Item-oriented tools (logo
// concepts) and section-oriented tools (job postings, offers) share it.
type Item struct {
	ID          string            `json:"id"`                     // Stable identifier, unique within its version set
	Label       string            `json:"label"`                  // Slot label (e.g. "concept", "headline", "post:instagram")
	Field       Field             `json:"field"`                  // Which editable field Generated holds
	Generated   string            `json:"generated"`              // Immutable generator output for this slot
	Edited      *string           `json:"edited,omitempty"`       // User override; nil means "use generated"
	EditedFlags map[Field]bool    `json:"edited_flags,omitempty"` // Which fields were ever user-touched
	Favorite    bool              `json:"favorite,omitempty"`     // User favorite marker
	AssetURL    string            `json:"asset_url,omitempty"`    // Remote artifact backing this item, if any
	Attributes  map[string]string `json:"attributes,omitempty"`   // Generator-provided extras (style, platform, ...)
	UpdatedAt   time.Time         `json:"updated_at"`             // Last mutation of this item
}

// Effective returns the value to display and export
func (it Item) Effective() string {
	if it.Edited != nil && *it.Edited != "" && *it.Edited != it.Generated {
		return *it.Edited
	}
	return it.Generated
}

// IsEditedVisible reports whether an "Edited" badge should be shown.
// It is recomputed from current values and ignores stale EditedFlags.
func (it Item) IsEditedVisible() bool {
	return it.Edited != nil && *it.Edited != "" && *it.Edited != it.Generated
}

// Flagged reports whether a field was ever touched by the user
func (it Item) Flagged(f Field) bool {
	return it.EditedFlags[f]
}

// Clone returns a deep copy so callers can derive a new item without
// aliasing the maps or override pointer of the original.
func (it Item) Clone() Item {
	out := it
	if it.Edited != nil {
		v := *it.Edited
		out.Edited = &v
	}
	if it.EditedFlags != nil {
		out.EditedFlags = make(map[Field]bool, len(it.EditedFlags))
		for k, v := range it.EditedFlags {
			out.EditedFlags[k] = v
		}
	}
	if it.Attributes != nil {
		out.Attributes = make(map[string]string, len(it.Attributes))
		for k, v := range it.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// WithEdited returns a copy carrying the override value. A value equal to
// Generated (or empty) is normalized to "no override".
func (it Item) WithEdited(value string, now time.Time) Item {
	out := it.Clone()
	if value == "" || value == it.Generated {
		out.Edited = nil
	} else {
		out.Edited = &value
	}
	out.UpdatedAt = now
	return out
}

// WithFlag returns a copy with the edit flag for f set to v
func (it Item) WithFlag(f Field, v bool) Item {
	out := it.Clone()
	if out.EditedFlags == nil {
		out.EditedFlags = make(map[Field]bool)
	}
	if v {
		out.EditedFlags[f] = true
	} else {
		delete(out.EditedFlags, f)
	}
	return out
}

// VersionSet is one immutable generation batch plus the brief that produced it.
// Only an item's Edited, EditedFlags, Favorite and UpdatedAt change after creation.
type VersionSet struct {
	ID        string    `json:"id"`
	Tool      ToolKind  `json:"tool"`
	CreatedAt time.Time `json:"created_at"`
	Brief     Brief     `json:"brief"`
	Items     []Item    `json:"items"` // Insertion order is display order
}

// Item returns the item with the given id
func (vs *VersionSet) Item(id string) (Item, bool) {
	if vs == nil {
		return Item{}, false
	}
	for _, it := range vs.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// IndexOf returns the position of the item with the given id, or -1
func (vs *VersionSet) IndexOf(id string) int {
	if vs == nil {
		return -1
	}
	for i, it := range vs.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// EffectiveTexts returns every item's effective value in display order
func (vs *VersionSet) EffectiveTexts() []string {
	if vs == nil {
		return nil
	}
	out := make([]string, 0, len(vs.Items))
	for _, it := range vs.Items {
		out = append(out, it.Effective())
	}
	return out
}

// ItemByLabel returns the first item with the given label
func (vs *VersionSet) ItemByLabel(label string) (Item, bool) {
	if vs == nil {
		return Item{}, false
	}
	for _, it := range vs.Items {
		if it.Label == label {
			return it, true
		}
	}
	return Item{}, false
}

// WithItem returns a shallow copy of the set with the item at idx replaced
func (vs *VersionSet) WithItem(idx int, it Item) *VersionSet {
	out := *vs
	out.Items = make([]Item, len(vs.Items))
	copy(out.Items, vs.Items)
	out.Items[idx] = it
	return &out
}

// Slot is one generated unit as returned by the generator, before it is
// assigned an id inside a version set.
type Slot struct {
	Label      string            `json:"label"`
	Field      Field             `json:"field,omitempty"`
	Text       string            `json:"text"`
	AssetURL   string            `json:"asset_url,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
