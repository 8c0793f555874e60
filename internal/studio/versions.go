package studio

import (
	"context"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/version"
)

// Active returns the active version set, or nil when there is none
func (s *Studio) Active() *content.VersionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.GetActive(s.activeID)
}

// Items returns the active version's items in display order, optionally
// with favorites first. Ids are never changed by the ordering.
func (s *Studio) Items(favoritesFirst bool) ([]content.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.history.GetActive(s.activeID)
	if active == nil {
		return nil, ErrNoActiveVersion
	}
	return content.SortedView(active.Items, favoritesFirst), nil
}

// Versions summarizes the history in creation order
func (s *Studio) Versions() []version.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Summaries(s.activeID)
}

// ManualSelection reports the manually selected version id, if any
func (s *Studio) ManualSelection() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// Select makes id the manually selected active version. An empty id
// returns to automatic selection of the most recent version.
func (s *Studio) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if _, ok := s.history.Get(id); !ok {
			return ErrVersionNotFound
		}
	}
	s.activeID = id
	s.changed(ctx)
	return nil
}

// Delete removes a version set. Deleting the active version falls back to
// automatic selection. Edit state on the deleted items is dropped.
func (s *Studio) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.history.DeleteVersion(id)
	if next == s.history {
		return ErrVersionNotFound
	}
	s.history = next
	s.activeID = version.ClearActive(s.activeID, id)
	s.engine.Forget(s.history)
	s.changed(ctx)
	s.log.Info("Version deleted").Str("version_id", id).Send()
	return nil
}
