// Package studio is the per-tool facade the UI layer talks to. It owns one
// version history, one edit engine and the last export job, and serializes
// every state transition onto a single timeline.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nainya/copyforge/internal/logger"
	"github.com/nainya/copyforge/internal/metrics"
	"github.com/nainya/copyforge/internal/storage"
	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/drift"
	"github.com/nainya/copyforge/pkg/export"
	"github.com/nainya/copyforge/pkg/facts"
	"github.com/nainya/copyforge/pkg/generator"
	"github.com/nainya/copyforge/pkg/override"
	"github.com/nainya/copyforge/pkg/version"
)

var (
	ErrNoActiveVersion       = errors.New("no active version")
	ErrVersionNotFound       = errors.New("version not found")
	ErrGeneratorFailed       = errors.New("generator failed")
	ErrGenerationInProgress  = errors.New("a generation is already running")
	ErrExportInProgress      = errors.New("an export is already running")
	ErrUnknownTool           = errors.New("unknown tool")
	ErrPersistenceNotEnabled = errors.New("persistence is not configured")
)

// DefaultLogoCount is the batch size for item-oriented tools when the brief has no "count"
const DefaultLogoCount = 4

// Options wires a studio's collaborators. Only Generator is required.
type Options struct {
	Generator generator.Generator
	Store     *storage.Store
	Fetcher   export.Fetcher
	Sink      export.Sink
	Export    export.Config
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	IDs       version.IDSource
	Clock     version.Clock
}

// RegenerateResult is the outcome of a fact-locked regeneration
type RegenerateResult struct {
	Version *content.VersionSet
	Locked  facts.LockedFacts
	Drift   drift.Report
	Message string
}

// ExportStatus reports the last export job
type ExportStatus struct {
	Current int
	Total   int
	Done    bool
	Summary export.Summary
}

// Studio holds one tool instance's state
type Studio struct {
	mu sync.Mutex

	tool     content.Tool
	gen      generator.Generator
	versions *version.Store
	engine   *override.Engine
	history  *version.History
	activeID string // manual selection; "" selects the most recent version

	generating bool

	store    *storage.Store
	exporter *export.Exporter
	job      *export.Job
	cancelEx context.CancelFunc

	root    *logger.Logger
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a studio for tool
func New(kind content.ToolKind, opts Options) (*Studio, error) {
	tool, ok := content.LookupTool(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, kind)
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("studio %s: generator is required", kind)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	store := version.NewStoreWith(opts.IDs, opts.Clock)

	s := &Studio{
		tool:     tool,
		gen:      opts.Generator,
		versions: store,
		engine:   override.NewEngine(store.Now),
		history:  version.NewHistory(),
		store:    opts.Store,
		root:     log,
		log:      log.StudioLogger(string(kind)),
		metrics:  opts.Metrics,
	}
	if opts.Sink != nil {
		s.exporter = export.NewExporter(opts.Fetcher, opts.Sink, opts.Export)
		s.exporter.OnItem = s.onExportItem
	}
	return s, nil
}

// Tool returns the studio's tool descriptor
func (s *Studio) Tool() content.Tool {
	return s.tool
}

// Restore loads the persisted history, if any
func (s *Studio) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.LoadHistory(ctx, s.tool.Kind)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore %s: %w", s.tool.Kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = version.NewHistory(snap.Sets...)
	s.activeID = snap.ActiveID
	if s.activeID != "" {
		if _, ok := s.history.Get(s.activeID); !ok {
			s.activeID = ""
		}
	}
	s.observeVersions()
	s.log.Info("History restored").Int("versions", s.history.Len()).Send()
	return nil
}

// Generate asks the generator for a fresh batch and stores it as a new
// version, which becomes active. On generator failure nothing is stored.
func (s *Studio) Generate(ctx context.Context, brief content.Brief) (*content.VersionSet, error) {
	if err := s.beginGeneration(); err != nil {
		return nil, err
	}
	defer s.endGeneration()

	brief = brief.Snapshot()
	req := generator.Request{Tool: s.tool.Kind, Brief: brief, Count: s.count(brief)}
	out, took, err := s.callGenerator(ctx, "generate", req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.commitVersion(ctx, brief, out.Slots)
	s.log.LogGeneration(vs.ID, len(vs.Items), 0, took, nil)
	if s.store != nil {
		if err := s.store.SaveDraft(ctx, s.tool.Kind, brief); err != nil {
			s.log.Warn("Failed to save draft").Err(err).Send()
		}
	}
	return vs, nil
}

// LockedFacts captures the facts of the active version's effective content
func (s *Studio) LockedFacts() (facts.LockedFacts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.history.GetActive(s.activeID)
	if active == nil {
		return facts.LockedFacts{}, ErrNoActiveVersion
	}
	return s.capture(active), nil
}

// Regenerate re-runs the active version's brief with its current facts
// locked, corrects any drift in the new output and stores it as a new
// active version. The previous version is left untouched.
func (s *Studio) Regenerate(ctx context.Context) (RegenerateResult, error) {
	if err := s.beginGeneration(); err != nil {
		return RegenerateResult{}, err
	}
	defer s.endGeneration()

	s.mu.Lock()
	active := s.history.GetActive(s.activeID)
	if active == nil {
		s.mu.Unlock()
		return RegenerateResult{}, ErrNoActiveVersion
	}
	brief := active.Brief.Snapshot()
	locked := s.capture(active)
	s.mu.Unlock()

	req := generator.Request{Tool: s.tool.Kind, Brief: brief, Count: s.count(brief), Locked: &locked}
	out, took, err := s.callGenerator(ctx, "regenerate", req)
	if err != nil {
		return RegenerateResult{}, err
	}

	slots, report := drift.CorrectOutput(s.tool, out.Slots, locked)
	for _, c := range report.Corrections() {
		if s.metrics != nil {
			s.metrics.RecordDrift(string(c.Kind), c.Applied)
		}
		s.log.Debug("Drift detected").
			Str("kind", string(c.Kind)).
			Str("found", c.Found).
			Str("locked", c.Locked).
			Bool("applied", c.Applied).
			Send()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.commitVersion(ctx, brief, slots)
	s.log.LogGeneration(vs.ID, len(vs.Items), len(report.Corrections()), took, nil)

	return RegenerateResult{
		Version: vs,
		Locked:  locked,
		Drift:   report,
		Message: report.Message(),
	}, nil
}

func (s *Studio) beginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return ErrGenerationInProgress
	}
	s.generating = true
	return nil
}

func (s *Studio) endGeneration() {
	s.mu.Lock()
	s.generating = false
	s.mu.Unlock()
}

func (s *Studio) callGenerator(ctx context.Context, mode string, req generator.Request) (generator.Output, time.Duration, error) {
	start := time.Now()
	out, err := s.gen.Generate(ctx, req)
	if err == nil && len(out.Slots) == 0 {
		err = generator.ErrEmptyOutput
	}
	d := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration(string(s.tool.Kind), mode, status, d)
	}
	if err != nil {
		s.log.LogGeneration("", 0, 0, d, err)
		return generator.Output{}, d, fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}
	return out, d, nil
}

// commitVersion appends a new version and makes it active. Caller holds mu.
func (s *Studio) commitVersion(ctx context.Context, brief content.Brief, slots []content.Slot) *content.VersionSet {
	vs := s.versions.CreateVersion(s.tool.Kind, brief, slots)
	s.history = s.history.Append(vs)
	s.activeID = ""
	s.changed(ctx)
	return vs
}

// capture locks facts from a version's effective content. Caller holds mu.
func (s *Studio) capture(vs *content.VersionSet) facts.LockedFacts {
	var cta string
	if s.tool.CTALabel != "" {
		if it, ok := vs.ItemByLabel(s.tool.CTALabel); ok {
			cta = it.Effective()
		}
	}
	return facts.Capture(vs.EffectiveTexts(), cta)
}

func (s *Studio) count(brief content.Brief) int {
	if !s.tool.ItemOriented {
		return 0
	}
	if n, ok := brief.AsMap()["count"].(float64); ok && n >= 1 {
		return int(n)
	}
	return DefaultLogoCount
}

// changed persists the history and refreshes gauges. Caller holds mu.
func (s *Studio) changed(ctx context.Context) {
	s.observeVersions()
	if s.store == nil {
		return
	}
	snap := storage.Snapshot{ActiveID: s.activeID, Sets: s.history.Sets()}
	if err := s.store.SaveHistory(context.WithoutCancel(ctx), s.tool.Kind, snap); err != nil {
		s.log.Error("Failed to persist history").Err(err).Send()
	}
}

func (s *Studio) observeVersions() {
	if s.metrics != nil {
		s.metrics.SetVersions(string(s.tool.Kind), s.history.Len())
	}
}
