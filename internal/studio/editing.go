package studio

import (
	"context"

	"github.com/nainya/copyforge/pkg/override"
	"github.com/nainya/copyforge/pkg/version"
)

// BeginEdit opens the single edit session on itemID
func (s *Studio) BeginEdit(itemID string) (override.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.BeginEdit(s.history, itemID)
}

// SetDraft updates the open session's draft
func (s *Studio) SetDraft(draft string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetDraft(draft)
}

// Session returns the open edit session, if any
func (s *Studio) Session() (override.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Session()
}

// Commit resolves the open session. A rejected empty name keeps the session
// open and carries the user-facing message in the result.
func (s *Studio) Commit(ctx context.Context) (override.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, res, err := s.engine.Commit(s.history)
	if err != nil {
		return res, err
	}
	s.recordOverride(res.Outcome.String())
	if next != s.history {
		s.history = next
		s.changed(ctx)
	}
	return res, nil
}

// Cancel discards the open session
func (s *Studio) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Cancel(); err != nil {
		return err
	}
	s.recordOverride("cancelled")
	return nil
}

// Reset clears an item's override. Resetting a clean item is a no-op.
func (s *Studio) Reset(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.engine.Reset(s.history, itemID)
	if !ok {
		return override.ErrItemNotFound
	}
	s.recordOverride("reset")
	if next != s.history {
		s.history = next
		s.changed(ctx)
	}
	return nil
}

// ToggleCompare flips the compare view of an overridden item
func (s *Studio) ToggleCompare(itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.history.FindItem(itemID); !ok {
		return false, override.ErrItemNotFound
	}
	return s.engine.ToggleCompare(s.history, itemID), nil
}

// State returns the override state of an item
func (s *Studio) State(itemID string) (override.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.engine.State(s.history, itemID)
	if !ok {
		return st, override.ErrItemNotFound
	}
	return st, nil
}

// IsEditedVisible reports whether an item shows the "Edited" badge
func (s *Studio) IsEditedVisible(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsEditedVisible(s.history, itemID)
}

// ToggleFavorite flips an item's favorite marker
func (s *Studio) ToggleFavorite(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.history.UpdateItem(itemID, version.ToggleFavorite(s.versions.Now()))
	if next == s.history {
		return override.ErrItemNotFound
	}
	s.history = next
	s.changed(ctx)
	return nil
}

func (s *Studio) recordOverride(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOverride(outcome)
	}
}
