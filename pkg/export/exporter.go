// ABOUTME: Bulk export of a version set's effective content
// ABOUTME: Serialized queue with a fixed inter-step delay and per-item failure bookkeeping

package export

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/nainya/copyforge/pkg/content"
)

const ReasonCancelled = "cancelled"

// Config controls the export queue
type Config struct {
	Width     int           // Concurrent item steps; 1 keeps the queue strictly sequential
	StepDelay time.Duration // Pause between one step finishing and the next starting
}

// DefaultConfig returns a sequential queue with a short delay
func DefaultConfig() Config {
	return Config{Width: 1, StepDelay: 250 * time.Millisecond}
}

// ItemMeta is the side-car metadata of one exported item
type ItemMeta struct {
	ID           string            `json:"id"`
	Position     int               `json:"position"`
	Label        string            `json:"label"`
	Text         string            `json:"text"`
	Generated    string            `json:"generated"`
	Edited       bool              `json:"edited"`
	Favorite     bool              `json:"favorite,omitempty"`
	AssetURL     string            `json:"asset_url,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	ContentFile  string            `json:"content_file,omitempty"`
	MetadataFile string            `json:"metadata_file,omitempty"`
	Exported     bool              `json:"exported"`
}

// Failure records why one item was not exported
type Failure struct {
	ItemID string `json:"item_id"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Manifest summarizes one export run
type Manifest struct {
	VersionID  string           `json:"version_id"`
	Tool       content.ToolKind `json:"tool"`
	ExportedAt time.Time        `json:"exported_at"`
	Total      int              `json:"total"`
	Items      []ItemMeta       `json:"items"`
	Failures   []Failure        `json:"failures"`
}

// Summary is the user-facing outcome of a run. Counts derive from the
// manifest's failure list.
type Summary struct {
	Total        int    `json:"total"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	ManifestName string `json:"manifest_name"`
	Cancelled    bool   `json:"cancelled,omitempty"`
}

// ItemResult is reported once per item as the queue advances
type ItemResult struct {
	Meta     ItemMeta
	Failure  *Failure
	Duration time.Duration
}

// Exporter runs export jobs
type Exporter struct {
	fetcher Fetcher
	sink    Sink
	cfg     Config
	now     func() time.Time

	// OnItem, when set, is called after each item step from the queue's goroutine
	OnItem func(ItemResult)
}

// NewExporter creates an exporter. Width below 1 is raised to 1.
func NewExporter(fetcher Fetcher, sink Sink, cfg Config) *Exporter {
	if cfg.Width < 1 {
		cfg.Width = 1
	}
	if cfg.StepDelay < 0 {
		cfg.StepDelay = 0
	}
	return &Exporter{fetcher: fetcher, sink: sink, cfg: cfg, now: time.Now}
}

// Job is one running or finished export
type Job struct {
	total    int
	current  atomic.Int64
	done     chan struct{}
	manifest Manifest
	summary  Summary
	err      error
}

// Progress returns completed and total item counts
func (j *Job) Progress() (current, total int) {
	return int(j.current.Load()), j.total
}

// Done is closed when the manifest has been written (or failed to write)
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its summary. The error is
// non-nil only when the manifest itself could not be emitted.
func (j *Job) Wait() (Summary, error) {
	<-j.done
	return j.summary, j.err
}

// Manifest returns the job's manifest once it is done
func (j *Job) Manifest() Manifest {
	<-j.done
	return j.manifest
}

// Run exports synchronously
func (e *Exporter) Run(ctx context.Context, vs *content.VersionSet, sel content.Selection) (Summary, error) {
	return e.Start(ctx, vs, sel).Wait()
}

// Start begins exporting the selected items of vs (all items when sel is
// empty). Cancelling ctx stops enqueuing; the in-flight step completes and
// the manifest is still written, listing unstarted items as cancelled.
func (e *Exporter) Start(ctx context.Context, vs *content.VersionSet, sel content.Selection) *Job {
	items := sel.Resolve(vs)
	job := &Job{total: len(items), done: make(chan struct{})}
	go e.run(ctx, job, vs, items)
	return job
}

func (e *Exporter) run(ctx context.Context, job *Job, vs *content.VersionSet, items []content.Item) {
	defer close(job.done)

	positions := make(map[string]int, len(vs.Items))
	for i, it := range vs.Items {
		positions[it.ID] = i + 1
	}

	results := make([]ItemResult, len(items))

	// Each slot carries the time it may be reused: StepDelay after its last
	// step finished.
	slots := make(chan time.Time, e.cfg.Width)
	for range e.cfg.Width {
		slots <- time.Time{}
	}

	var g errgroup.Group

	// Cancellation stops enqueuing; a step already started runs to completion.
	stepCtx := context.WithoutCancel(ctx)

	var cancelled bool
	for i, it := range items {
		if !cancelled && e.acquire(ctx, slots) != nil {
			cancelled = true
		}
		if cancelled {
			results[i] = ItemResult{
				Meta:    baseMeta(it, positions[it.ID]),
				Failure: &Failure{ItemID: it.ID, Label: it.Label, Reason: ReasonCancelled},
			}
			continue
		}
		g.Go(func() error {
			res := e.exportItem(stepCtx, it, positions[it.ID])
			results[i] = res
			job.current.Add(1)
			if e.OnItem != nil {
				e.OnItem(res)
			}
			slots <- time.Now().Add(e.cfg.StepDelay)
			return nil
		})
	}
	_ = g.Wait()

	manifest := Manifest{
		VersionID:  vs.ID,
		Tool:       vs.Tool,
		ExportedAt: e.now().UTC(),
		Total:      len(items),
		Items:      make([]ItemMeta, 0, len(items)),
		Failures:   []Failure{},
	}
	for _, r := range results {
		manifest.Items = append(manifest.Items, r.Meta)
		if r.Failure != nil {
			manifest.Failures = append(manifest.Failures, *r.Failure)
		}
	}

	name := ManifestName(vs)
	job.manifest = manifest
	job.summary = Summary{
		Total:        manifest.Total,
		Failed:       len(manifest.Failures),
		Succeeded:    manifest.Total - len(manifest.Failures),
		ManifestName: name,
		Cancelled:    cancelled,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		job.err = fmt.Errorf("encode manifest: %w", err)
		return
	}
	if err := e.sink.Emit(stepCtx, name, data, "application/json"); err != nil {
		job.err = fmt.Errorf("write manifest: %w", err)
	}
}

// acquire takes a free slot and waits out its delay. It fails when ctx is
// done before the slot can be used.
func (e *Exporter) acquire(ctx context.Context, slots chan time.Time) error {
	var ready time.Time
	select {
	case ready = <-slots:
	case <-ctx.Done():
		return ctx.Err()
	}
	if wait := time.Until(ready); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return ctx.Err()
}

func (e *Exporter) exportItem(ctx context.Context, it content.Item, pos int) ItemResult {
	start := time.Now()
	meta := baseMeta(it, pos)
	base := ArtifactBase(it, pos)

	fail := func(reason string) ItemResult {
		return ItemResult{
			Meta:     meta,
			Failure:  &Failure{ItemID: it.ID, Label: it.Label, Reason: reason},
			Duration: time.Since(start),
		}
	}

	var (
		data        []byte
		contentType string
		ext         string
	)
	if it.AssetURL != "" {
		if e.fetcher == nil {
			return fail("fetch failed: no fetcher configured")
		}
		var err error
		data, contentType, err = e.fetcher.Fetch(ctx, it.AssetURL)
		if err != nil {
			return fail("fetch failed: " + err.Error())
		}
		if len(data) == 0 {
			return fail("missing artifact: empty download")
		}
		ext = extensionFor(contentType)
	} else {
		text := it.Effective()
		if strings.TrimSpace(text) == "" {
			return fail("missing artifact: empty content")
		}
		data = []byte(text)
		contentType = "text/plain; charset=utf-8"
		ext = ".txt"
	}

	meta.ContentFile = base + ext
	meta.MetadataFile = base + ".json"

	if err := e.sink.Emit(ctx, meta.ContentFile, data, contentType); err != nil {
		return fail("content write failed: " + err.Error())
	}

	meta.Exported = true
	side, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		meta.Exported = false
		return fail("metadata encode failed: " + err.Error())
	}
	if err := e.sink.Emit(ctx, meta.MetadataFile, side, "application/json"); err != nil {
		meta.Exported = false
		return fail("metadata write failed: " + err.Error())
	}

	return ItemResult{Meta: meta, Duration: time.Since(start)}
}

func baseMeta(it content.Item, pos int) ItemMeta {
	return ItemMeta{
		ID:         it.ID,
		Position:   pos,
		Label:      it.Label,
		Text:       it.Effective(),
		Generated:  it.Generated,
		Edited:     it.IsEditedVisible(),
		Favorite:   it.Favorite,
		AssetURL:   it.AssetURL,
		Attributes: it.Attributes,
	}
}

// ManifestName is the manifest artifact name for a version set
func ManifestName(vs *content.VersionSet) string {
	id := vs.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("manifest-%s.json", id)
}

// ArtifactBase names an item's artifacts: position, slug of the effective
// value, and a short id so renamed items never collide.
func ArtifactBase(it content.Item, pos int) string {
	id := it.ID
	if len(id) > 8 {
		id = id[:8]
	}
	slug := Slugify(it.Effective())
	if slug == "" {
		slug = Slugify(it.Label)
	}
	if slug == "" {
		slug = "item"
	}
	return fmt.Sprintf("%02d-%s-%s", pos, slug, id)
}

// Slugify lowercases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			if b.Len() >= 40 {
				break
			}
			continue
		}
		dash = true
	}
	return b.String()
}

func extensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mt {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	case "text/plain":
		return ".txt"
	}
	return ".bin"
}

var (
	_ Sink = DirSink{}
	_ Sink = (*MemorySink)(nil)
	_ Sink = (*GCSSink)(nil)
)
