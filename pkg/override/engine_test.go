// ABOUTME: Tests for the override state machine
// ABOUTME: Covers the single-session invariant, commits, resets and compare views

package override

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/version"
)

func setupTestEngine(t *testing.T, tool content.ToolKind, slots ...content.Slot) (*Engine, *version.History, *content.VersionSet) {
	t.Helper()
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	store := version.NewStoreWith(ids, clock)
	vs := store.CreateVersion(tool, content.Brief{}, slots)
	return NewEngine(clock), version.NewHistory(vs), vs
}

func logoBatch() []content.Slot {
	return []content.Slot{
		{Label: "concept", Text: "Acme Bold"},
		{Label: "concept", Text: "Acme Wave"},
		{Label: "concept", Text: "Acme Peak"},
	}
}

func effective(t *testing.T, h *version.History, id string) content.Item {
	t.Helper()
	_, it, ok := h.FindItem(id)
	if !ok {
		t.Fatalf("Item %s not found", id)
	}
	return it
}

func TestRenameAndResetScenario(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	item2 := vs.Items[1].ID

	sess, err := e.BeginEdit(h, item2)
	if err != nil {
		t.Fatalf("Failed to begin edit: %v", err)
	}
	if sess.Draft != "Acme Wave" {
		t.Errorf("Draft should be seeded from effective value, got %q", sess.Draft)
	}

	if err := e.SetDraft("Sunset Logo"); err != nil {
		t.Fatalf("Failed to set draft: %v", err)
	}
	h, res, err := e.Commit(h)
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	if res.Outcome != OutcomeOverridden || res.State != StateOverridden {
		t.Errorf("Expected overridden commit, got %+v", res)
	}
	if !e.IsEditedVisible(h, item2) {
		t.Errorf("Expected edited badge after rename")
	}

	h, found := e.Reset(h, item2)
	if !found {
		t.Fatalf("Reset could not find %s", item2)
	}
	if e.IsEditedVisible(h, item2) {
		t.Errorf("Badge should be gone after reset")
	}
	it := effective(t, h, item2)
	if it.Effective() != "Acme Wave" {
		t.Errorf("Expected generated name after reset, got %q", it.Effective())
	}
	if it.Flagged(content.FieldName) {
		t.Errorf("Reset should clear the name flag")
	}
}

func TestSingleEditSession(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)

	if _, err := e.BeginEdit(h, vs.Items[0].ID); err != nil {
		t.Fatalf("Failed to begin edit: %v", err)
	}
	if _, err := e.BeginEdit(h, vs.Items[1].ID); !errors.Is(err, ErrEditInProgress) {
		t.Errorf("Expected ErrEditInProgress, got %v", err)
	}

	if st, _ := e.State(h, vs.Items[0].ID); st != StateEditing {
		t.Errorf("Expected editing state, got %s", st)
	}

	if err := e.Cancel(); err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}
	if _, err := e.BeginEdit(h, vs.Items[1].ID); err != nil {
		t.Errorf("Expected edit to open after cancel, got %v", err)
	}
}

func TestBeginEditUnknownItem(t *testing.T) {
	e, h, _ := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	if _, err := e.BeginEdit(h, "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
	if _, ok := e.Session(); ok {
		t.Errorf("No session should be open")
	}
}

func TestCommitGeneratedRoundTrip(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolOffer,
		content.Slot{Label: "headline", Text: "Spring sale"},
		content.Slot{Label: "body", Text: "Save 20% on everything."},
	)
	id := vs.Items[1].ID

	e.BeginEdit(h, id)
	e.SetDraft("Save 20% on everything.")
	next, res, err := e.Commit(h)
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	if res.Outcome != OutcomeCleared {
		t.Errorf("Expected cleared outcome, got %s", res.Outcome)
	}
	if next != h {
		t.Errorf("Committing the generated text on a clean section should not mutate")
	}
	if st, _ := e.State(next, id); st != StateClean {
		t.Errorf("Expected clean state, got %s", st)
	}
	if got := effective(t, next, id).Effective(); got != "Save 20% on everything." {
		t.Errorf("Expected generated text, got %q", got)
	}
}

func TestCommitEmptyText(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolOffer, content.Slot{Label: "body", Text: "Original body"})
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("Rewritten body")
	h, _, _ = e.Commit(h)

	e.BeginEdit(h, id)
	e.SetDraft("   ")
	h, res, err := e.Commit(h)
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	if res.Outcome != OutcomeCleared || res.State != StateClean {
		t.Errorf("Empty body commit should clear the override, got %+v", res)
	}
	if got := effective(t, h, id).Effective(); got != "Original body" {
		t.Errorf("Expected original body, got %q", got)
	}
}

func TestCommitEmptyNameRejected(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("")
	next, res, err := e.Commit(h)
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	if res.Outcome != OutcomeRejectedEmpty {
		t.Fatalf("Expected rejected-empty outcome, got %s", res.Outcome)
	}
	if res.Message == "" {
		t.Errorf("Rejected commit should carry a message")
	}
	if next != h {
		t.Errorf("Rejected commit must not mutate the history")
	}

	sess, ok := e.Session()
	if !ok {
		t.Fatalf("Session should stay open for correction")
	}
	if sess.Draft != "Acme Bold" {
		t.Errorf("Draft should be reverted, got %q", sess.Draft)
	}
}

func TestCancelKeepsCommittedState(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("First")
	h, _, _ = e.Commit(h)

	e.BeginEdit(h, id)
	e.SetDraft("Second")
	if err := e.Cancel(); err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}

	if st, _ := e.State(h, id); st != StateOverridden {
		t.Errorf("Expected prior overridden state, got %s", st)
	}
	if got := effective(t, h, id).Effective(); got != "First" {
		t.Errorf("Expected First, got %q", got)
	}
	if err := e.Cancel(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestResetIdempotent(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("Renamed")
	h, _, _ = e.Commit(h)

	once, _ := e.Reset(h, id)
	twice, found := e.Reset(once, id)
	if !found {
		t.Fatalf("Second reset should still find the item")
	}
	if twice != once {
		t.Errorf("Second reset should be a no-op")
	}

	if _, found := e.Reset(h, "missing"); found {
		t.Errorf("Reset of unknown id should report not found")
	}
}

func TestResetClosesOpenSession(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("Renamed")
	h, _, _ = e.Commit(h)
	e.BeginEdit(h, id)

	h, _ = e.Reset(h, id)
	if _, ok := e.Session(); ok {
		t.Errorf("Reset should close the session on that section")
	}
	if st, _ := e.State(h, id); st != StateClean {
		t.Errorf("Expected clean, got %s", st)
	}
}

func TestToggleCompare(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	if e.ToggleCompare(h, id) {
		t.Errorf("Compare must not open on a clean section")
	}

	e.BeginEdit(h, id)
	e.SetDraft("Renamed")
	h, _, _ = e.Commit(h)

	if !e.ToggleCompare(h, id) {
		t.Fatalf("Expected compare view to open")
	}
	if st, _ := e.State(h, id); st != StateComparing {
		t.Errorf("Expected comparing, got %s", st)
	}

	// Editing closes the compare view; it never coexists with editing
	e.BeginEdit(h, id)
	if e.ToggleCompare(h, id) {
		t.Errorf("Compare must not open while editing")
	}
	e.Cancel()
	if st, _ := e.State(h, id); st != StateOverridden {
		t.Errorf("Expected overridden after cancel, got %s", st)
	}

	e.ToggleCompare(h, id)
	h, _ = e.Reset(h, id)
	if st, _ := e.State(h, id); st != StateClean {
		t.Errorf("Reset should close compare, got %s", st)
	}
}

func TestStaleFlagAfterCommitToGenerated(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	id := vs.Items[0].ID

	e.BeginEdit(h, id)
	e.SetDraft("Renamed")
	h, _, _ = e.Commit(h)

	e.BeginEdit(h, id)
	e.SetDraft("Acme Bold")
	h, _, _ = e.Commit(h)

	it := effective(t, h, id)
	if !it.Flagged(content.FieldName) {
		t.Errorf("Flag records the touch even after reverting through a commit")
	}
	if e.IsEditedVisible(h, id) {
		t.Errorf("Badge must not show for a no-op override")
	}
}

func TestForgetDeletedVersion(t *testing.T) {
	e, h, vs := setupTestEngine(t, content.ToolLogo, logoBatch()...)
	e.BeginEdit(h, vs.Items[0].ID)

	h = h.DeleteVersion(vs.ID)
	e.Forget(h)
	if _, ok := e.Session(); ok {
		t.Errorf("Session on a deleted item should be dropped")
	}
}
