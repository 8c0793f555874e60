// ABOUTME: Per-section generated/edited override state machine
// ABOUTME: One global edit session slot; compare views only over overridden sections

package override

import (
	"errors"
	"strings"
	"time"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/version"
)

// State is the derived state of one section
type State int

const (
	StateClean      State = iota // No open edit, no override
	StateOverridden              // No open edit, override differs from generated
	StateEditing                 // The single open edit session targets this section
	StateComparing               // Side-by-side view of generated vs edited
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateOverridden:
		return "overridden"
	case StateEditing:
		return "editing"
	case StateComparing:
		return "comparing"
	}
	return "unknown"
}

var (
	ErrEditInProgress = errors.New("another section is already being edited")
	ErrNoSession      = errors.New("no edit session is open")
	ErrItemNotFound   = errors.New("item not found")
)

// Outcome describes how a commit resolved
type Outcome int

const (
	OutcomeCleared       Outcome = iota // Draft empty or equal to generated; no override kept
	OutcomeOverridden                   // Draft stored as the override
	OutcomeRejectedEmpty                // Field rejects emptiness; draft reverted, session still open
	OutcomeNotFound                     // Item vanished while editing; session closed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCleared:
		return "cleared"
	case OutcomeOverridden:
		return "overridden"
	case OutcomeRejectedEmpty:
		return "rejected_empty"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

// CommitResult reports a commit's outcome and the section's resulting state
type CommitResult struct {
	Outcome Outcome
	State   State
	Message string // User-facing text for rejected commits
}

// Session is the single open edit session
type Session struct {
	ItemID string
	Field  content.Field
	Draft  string
}

// Engine holds the edit session slot and open compare views. Committed
// values live in the version history the caller passes in; the engine only
// returns new histories and never mutates one.
type Engine struct {
	session   *Session
	comparing map[string]bool
	now       func() time.Time
}

// NewEngine creates an engine. A nil clock uses time.Now.
func NewEngine(clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		comparing: make(map[string]bool),
		now:       clock,
	}
}

// Session returns the open edit session, if any
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// State derives the state of itemID from h and the engine's session slot
func (e *Engine) State(h *version.History, itemID string) (State, bool) {
	_, it, ok := h.FindItem(itemID)
	if !ok {
		return StateClean, false
	}
	if e.session != nil && e.session.ItemID == itemID {
		return StateEditing, true
	}
	if it.IsEditedVisible() {
		if e.comparing[itemID] {
			return StateComparing, true
		}
		return StateOverridden, true
	}
	return StateClean, true
}

// IsEditedVisible reports whether itemID should show an "Edited" badge
func (e *Engine) IsEditedVisible(h *version.History, itemID string) bool {
	_, it, ok := h.FindItem(itemID)
	return ok && it.IsEditedVisible()
}

// BeginEdit opens the edit session on itemID with the draft seeded from its
// effective value. Only one session may be open at a time. An open compare
// view on the section is closed.
func (e *Engine) BeginEdit(h *version.History, itemID string) (Session, error) {
	if e.session != nil {
		return Session{}, ErrEditInProgress
	}
	_, it, ok := h.FindItem(itemID)
	if !ok {
		return Session{}, ErrItemNotFound
	}
	delete(e.comparing, itemID)
	e.session = &Session{
		ItemID: itemID,
		Field:  it.Field,
		Draft:  it.Effective(),
	}
	return *e.session, nil
}

// SetDraft replaces the open session's draft buffer
func (e *Engine) SetDraft(draft string) error {
	if e.session == nil {
		return ErrNoSession
	}
	e.session.Draft = draft
	return nil
}

// Commit resolves the open session against h. A draft that is empty or
// equal to the generated value leaves no override; any other draft becomes
// the override. Empty drafts on fields that reject emptiness are reverted to
// the current effective value and the session stays open.
func (e *Engine) Commit(h *version.History) (*version.History, CommitResult, error) {
	if e.session == nil {
		return h, CommitResult{}, ErrNoSession
	}
	sess := e.session

	_, it, ok := h.FindItem(sess.ItemID)
	if !ok {
		e.session = nil
		return h, CommitResult{Outcome: OutcomeNotFound, State: StateClean}, nil
	}

	draft := sess.Draft
	if sess.Field == content.FieldName {
		draft = strings.TrimSpace(draft)
	}
	empty := strings.TrimSpace(draft) == ""

	if empty && !sess.Field.AllowsEmpty() {
		sess.Draft = it.Effective()
		return h, CommitResult{
			Outcome: OutcomeRejectedEmpty,
			State:   StateEditing,
			Message: "Name can't be empty, reverted.",
		}, nil
	}

	e.session = nil
	delete(e.comparing, sess.ItemID)
	now := e.now()

	if empty || draft == it.Generated {
		if it.Edited == nil {
			return h, CommitResult{Outcome: OutcomeCleared, State: StateClean}, nil
		}
		next := h.UpdateItem(sess.ItemID, func(it content.Item) content.Item {
			return it.WithEdited("", now)
		})
		return next, CommitResult{Outcome: OutcomeCleared, State: StateClean}, nil
	}

	next := h.UpdateItem(sess.ItemID, version.SetOverride(draft, now))
	return next, CommitResult{Outcome: OutcomeOverridden, State: StateOverridden}, nil
}

// Cancel discards the open session without touching committed state
func (e *Engine) Cancel() error {
	if e.session == nil {
		return ErrNoSession
	}
	e.session = nil
	return nil
}

// Reset clears itemID's override and edit flag, closing any open session or
// compare view on it. Resetting a clean section is a no-op returning h.
// The boolean is false when itemID is unknown.
func (e *Engine) Reset(h *version.History, itemID string) (*version.History, bool) {
	_, it, ok := h.FindItem(itemID)
	if !ok {
		return h, false
	}
	if e.session != nil && e.session.ItemID == itemID {
		e.session = nil
	}
	delete(e.comparing, itemID)

	if it.Edited == nil && !it.Flagged(it.Field) {
		return h, true
	}
	return h.UpdateItem(itemID, version.ClearOverride(e.now())), true
}

// ToggleCompare flips the compare view of an overridden section and returns
// whether it is now open. Sections in any other state are left alone.
func (e *Engine) ToggleCompare(h *version.History, itemID string) bool {
	st, ok := e.State(h, itemID)
	if !ok {
		return false
	}
	switch st {
	case StateOverridden:
		e.comparing[itemID] = true
		return true
	case StateComparing:
		delete(e.comparing, itemID)
	}
	return false
}

// Forget drops session and compare state for items no longer present in h,
// e.g. after their version set was deleted.
func (e *Engine) Forget(h *version.History) {
	if e.session != nil {
		if _, _, ok := h.FindItem(e.session.ItemID); !ok {
			e.session = nil
		}
	}
	for id := range e.comparing {
		if _, _, ok := h.FindItem(id); !ok {
			delete(e.comparing, id)
		}
	}
}
