// ABOUTME: Selection sets for bulk actions and reordered views
// ABOUTME: Pure value types; never owned by a version set

package content

import "slices"

// Selection is a set of item ids participating in a bulk action
type Selection map[string]struct{}

// NewSelection builds a selection from ids
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Resolve returns the selected items of vs in display order. An empty
// selection means every item in the version set.
func (s Selection) Resolve(vs *VersionSet) []Item {
	if vs == nil {
		return nil
	}
	out := make([]Item, 0, len(vs.Items))
	for _, it := range vs.Items {
		if len(s) == 0 || s.Has(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// SortedView returns a reordered copy of items. With favoritesFirst set,
// favorites move ahead of the rest; relative order is otherwise kept.
// Ids are never touched.
func SortedView(items []Item, favoritesFirst bool) []Item {
	out := slices.Clone(items)
	if !favoritesFirst {
		return out
	}
	slices.SortStableFunc(out, func(a, b Item) int {
		switch {
		case a.Favorite == b.Favorite:
			return 0
		case a.Favorite:
			return -1
		default:
			return 1
		}
	})
	return out
}
