package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nainya/copyforge/internal/logger"
	"github.com/nainya/copyforge/internal/metrics"
	"github.com/nainya/copyforge/pkg/content"
)

// ErrNotFound is returned when a named record does not exist
var ErrNotFound = errors.New("storage: not found")

// Snapshot is the persisted form of one tool's version history
type Snapshot struct {
	ActiveID string                `json:"active_id"`
	Sets     []*content.VersionSet `json:"sets"`
}

// Store is a key-value style persistence layer keyed by tool
type Store struct {
	db      *sql.DB
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New returns a Store bound to an existing database handle.
// log and m may be nil.
func New(db *sql.DB, log *logger.Logger, m *metrics.Metrics) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, log: log, metrics: m, now: time.Now}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) observe(op string, start time.Time, rows int, err error) {
	d := time.Since(start)
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.log.LogDbOperation(op, d, rows, err)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordDbOperation(op, status, d)
	}
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// SaveDraft stores the latest unsubmitted form inputs for a tool
func (s *Store) SaveDraft(ctx context.Context, tool content.ToolKind, brief content.Brief) (err error) {
	start := time.Now()
	defer func() { s.observe("save_draft", start, 1, err) }()

	data, err := json.Marshal(brief)
	if err != nil {
		return fmt.Errorf("save draft: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (tool, brief, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(tool) DO UPDATE SET brief = excluded.brief, updated_at = excluded.updated_at`,
		string(tool), string(data), s.stamp())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the stored draft for a tool, or ErrNotFound
func (s *Store) LoadDraft(ctx context.Context, tool content.ToolKind) (brief content.Brief, err error) {
	start := time.Now()
	defer func() { s.observe("load_draft", start, 1, err) }()

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT brief FROM drafts WHERE tool = ?`, string(tool)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Brief{}, ErrNotFound
	}
	if err != nil {
		return content.Brief{}, fmt.Errorf("load draft: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &brief); err != nil {
		return content.Brief{}, fmt.Errorf("load draft: decode: %w", err)
	}
	return brief, nil
}

// SaveConfig stores a named brief preset, replacing one with the same name
func (s *Store) SaveConfig(ctx context.Context, tool content.ToolKind, name string, brief content.Brief) (err error) {
	start := time.Now()
	defer func() { s.observe("save_config", start, 1, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("save config: name is empty")
	}
	data, err := json.Marshal(brief)
	if err != nil {
		return fmt.Errorf("save config: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO configs (tool, name, brief, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(tool, name) DO UPDATE SET brief = excluded.brief, updated_at = excluded.updated_at`,
		string(tool), name, string(data), s.stamp())
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// LoadConfig returns a named preset, or ErrNotFound
func (s *Store) LoadConfig(ctx context.Context, tool content.ToolKind, name string) (brief content.Brief, err error) {
	start := time.Now()
	defer func() { s.observe("load_config", start, 1, err) }()

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT brief FROM configs WHERE tool = ? AND name = ?`,
		string(tool), strings.TrimSpace(name)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Brief{}, ErrNotFound
	}
	if err != nil {
		return content.Brief{}, fmt.Errorf("load config: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &brief); err != nil {
		return content.Brief{}, fmt.Errorf("load config: decode: %w", err)
	}
	return brief, nil
}

// ListConfigs returns the preset names for a tool, sorted by name
func (s *Store) ListConfigs(ctx context.Context, tool content.ToolKind) (names []string, err error) {
	start := time.Now()
	defer func() { s.observe("list_configs", start, len(names), err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM configs WHERE tool = ? ORDER BY name`, string(tool))
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("list configs: scan: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return names, nil
}

// DeleteConfig removes a named preset. Deleting a missing preset is not an error.
func (s *Store) DeleteConfig(ctx context.Context, tool content.ToolKind, name string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_config", start, 1, err) }()

	if _, err = s.db.ExecContext(ctx, `DELETE FROM configs WHERE tool = ? AND name = ?`,
		string(tool), strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// SaveHistory replaces the stored history snapshot for a tool
func (s *Store) SaveHistory(ctx context.Context, tool content.ToolKind, snap Snapshot) (err error) {
	start := time.Now()
	defer func() { s.observe("save_history", start, len(snap.Sets), err) }()

	if snap.Sets == nil {
		snap.Sets = []*content.VersionSet{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save history: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO histories (tool, active_id, snapshot, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(tool) DO UPDATE SET active_id = excluded.active_id,
			snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		string(tool), snap.ActiveID, string(data), s.stamp())
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// LoadHistory returns the stored snapshot for a tool, or ErrNotFound
func (s *Store) LoadHistory(ctx context.Context, tool content.ToolKind) (snap Snapshot, err error) {
	start := time.Now()
	defer func() { s.observe("load_history", start, len(snap.Sets), err) }()

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT snapshot FROM histories WHERE tool = ?`, string(tool)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load history: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("load history: decode: %w", err)
	}
	return snap, nil
}
