// ABOUTME: Item mutators for History.UpdateItem
// ABOUTME: Favorite toggling and direct overrides; ids are never touched

package version

import (
	"time"

	"github.com/nainya/copyforge/pkg/content"
)

// ToggleFavorite flips an item's favorite marker and records the touch
func ToggleFavorite(now time.Time) func(content.Item) content.Item {
	return func(it content.Item) content.Item {
		it = it.WithFlag(content.FieldFavorite, true)
		it.Favorite = !it.Favorite
		it.UpdatedAt = now
		return it
	}
}

// SetOverride writes value as the item's override. A value equal to the
// generated one is normalized to "no override" and leaves the flags alone.
func SetOverride(value string, now time.Time) func(content.Item) content.Item {
	return func(it content.Item) content.Item {
		it = it.WithEdited(value, now)
		if it.Edited != nil {
			it = it.WithFlag(it.Field, true)
		}
		return it
	}
}

// ClearOverride drops the override and the field's edit flag
func ClearOverride(now time.Time) func(content.Item) content.Item {
	return func(it content.Item) content.Item {
		it = it.WithEdited("", now)
		return it.WithFlag(it.Field, false)
	}
}

// Summary is a compact description of one version set
type Summary struct {
	ID          string
	Tool        content.ToolKind
	CreatedAt   time.Time
	ItemCount   int
	EditedCount int
	Active      bool
}

// Summaries describes every version set in creation order, marking the one
// GetActive(activeID) resolves to.
func (h *History) Summaries(activeID string) []Summary {
	active := h.GetActive(activeID)
	out := make([]Summary, 0, h.Len())
	for _, vs := range h.Sets() {
		edited := 0
		for _, it := range vs.Items {
			if it.IsEditedVisible() {
				edited++
			}
		}
		out = append(out, Summary{
			ID:          vs.ID,
			Tool:        vs.Tool,
			CreatedAt:   vs.CreatedAt,
			ItemCount:   len(vs.Items),
			EditedCount: edited,
			Active:      active != nil && active.ID == vs.ID,
		})
	}
	return out
}
