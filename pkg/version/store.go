// ABOUTME: Version store over immutable version-set collections
// ABOUTME: Every mutation returns a new History; an unchanged pointer means "not found"

package version

import (
	"time"

	"github.com/google/uuid"

	"github.com/nainya/copyforge/pkg/content"
)

// IDSource yields fresh opaque identifiers
type IDSource func() string

// Clock yields the current time
type Clock func() time.Time

// Store builds version sets from generator output. It never inspects prior versions.
type Store struct {
	newID IDSource
	now   Clock
}

// NewStore creates a store using random UUIDs and the wall clock
func NewStore() *Store {
	return NewStoreWith(uuid.NewString, time.Now)
}

// NewStoreWith creates a store with explicit id and time sources
func NewStoreWith(ids IDSource, clock Clock) *Store {
	if ids == nil {
		ids = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	return &Store{newID: ids, now: clock}
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// CreateVersion assigns a fresh version id and a fresh id per slot.
// The brief is snapshotted; later changes by the caller do not leak in.
func (s *Store) CreateVersion(tool content.ToolKind, brief content.Brief, slots []content.Slot) *content.VersionSet {
	now := s.now()
	defaultField := content.FieldText
	if t, ok := content.LookupTool(tool); ok {
		defaultField = t.DefaultField()
	}

	items := make([]content.Item, 0, len(slots))
	for _, slot := range slots {
		field := slot.Field
		if field == "" {
			field = defaultField
		}
		var attrs map[string]string
		if len(slot.Attributes) > 0 {
			attrs = make(map[string]string, len(slot.Attributes))
			for k, v := range slot.Attributes {
				attrs[k] = v
			}
		}
		items = append(items, content.Item{
			ID:         s.newID(),
			Label:      slot.Label,
			Field:      field,
			Generated:  slot.Text,
			AssetURL:   slot.AssetURL,
			Attributes: attrs,
			UpdatedAt:  now,
		})
	}

	return &content.VersionSet{
		ID:        s.newID(),
		Tool:      tool,
		CreatedAt: now,
		Brief:     brief.Snapshot(),
		Items:     items,
	}
}

// History is an ordered, immutable collection of version sets in creation order
type History struct {
	sets []*content.VersionSet
}

// NewHistory wraps the given version sets
func NewHistory(sets ...*content.VersionSet) *History {
	h := &History{sets: make([]*content.VersionSet, 0, len(sets))}
	for _, vs := range sets {
		if vs != nil {
			h.sets = append(h.sets, vs)
		}
	}
	return h
}

// Len returns the number of version sets
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.sets)
}

// Sets returns the version sets in creation order
func (h *History) Sets() []*content.VersionSet {
	if h == nil {
		return nil
	}
	out := make([]*content.VersionSet, len(h.sets))
	copy(out, h.sets)
	return out
}

// Get returns the version set with the given id
func (h *History) Get(id string) (*content.VersionSet, bool) {
	if h == nil {
		return nil, false
	}
	for _, vs := range h.sets {
		if vs.ID == id {
			return vs, true
		}
	}
	return nil, false
}

// Latest returns the most recently created version set, or nil when empty.
// Ties on CreatedAt go to the later insertion.
func (h *History) Latest() *content.VersionSet {
	if h == nil {
		return nil
	}
	var latest *content.VersionSet
	for _, vs := range h.sets {
		if latest == nil || !vs.CreatedAt.Before(latest.CreatedAt) {
			latest = vs
		}
	}
	return latest
}

// Append returns a new history with vs added at the end
func (h *History) Append(vs *content.VersionSet) *History {
	out := &History{sets: make([]*content.VersionSet, 0, h.Len()+1)}
	if h != nil {
		out.sets = append(out.sets, h.sets...)
	}
	out.sets = append(out.sets, vs)
	return out
}

// GetActive returns the version set matching activeID. An empty activeID
// selects the most recently created version set. A manual id that no
// longer exists yields nil.
func (h *History) GetActive(activeID string) *content.VersionSet {
	if activeID == "" {
		return h.Latest()
	}
	vs, ok := h.Get(activeID)
	if !ok {
		return nil
	}
	return vs
}

// DeleteVersion returns a history without the given version set. When no
// set matches, h itself is returned.
func (h *History) DeleteVersion(id string) *History {
	if h == nil {
		return h
	}
	idx := -1
	for i, vs := range h.sets {
		if vs.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return h
	}
	out := &History{sets: make([]*content.VersionSet, 0, len(h.sets)-1)}
	out.sets = append(out.sets, h.sets[:idx]...)
	out.sets = append(out.sets, h.sets[idx+1:]...)
	return out
}

// UpdateItem locates itemID across every version set and replaces the item
// with mutate's result. The item's id and generated value are kept as-is.
// When no item matches, h itself is returned and callers must treat that as
// "id not found".
func (h *History) UpdateItem(itemID string, mutate func(content.Item) content.Item) *History {
	if h == nil {
		return h
	}
	for si, vs := range h.sets {
		idx := vs.IndexOf(itemID)
		if idx < 0 {
			continue
		}
		prev := vs.Items[idx]
		next := mutate(prev.Clone())
		next.ID = prev.ID
		next.Generated = prev.Generated
		next.Label = prev.Label
		next.Field = prev.Field

		out := &History{sets: make([]*content.VersionSet, len(h.sets))}
		copy(out.sets, h.sets)
		out.sets[si] = vs.WithItem(idx, next)
		return out
	}
	return h
}

// FindItem returns the version set and item holding itemID
func (h *History) FindItem(itemID string) (*content.VersionSet, content.Item, bool) {
	if h == nil {
		return nil, content.Item{}, false
	}
	for _, vs := range h.sets {
		if it, ok := vs.Item(itemID); ok {
			return vs, it, true
		}
	}
	return nil, content.Item{}, false
}

// ClearActive returns the active pointer to use after deletedID is removed.
// A pointer at the deleted set falls back to automatic selection ("").
func ClearActive(activeID, deletedID string) string {
	if activeID == deletedID {
		return ""
	}
	return activeID
}
