package studio

import (
	"context"
	"errors"
	"time"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/export"
)

// ErrExportNotConfigured is returned when the studio has no sink
var ErrExportNotConfigured = errors.New("export is not configured")

// Export starts a bulk export of the selected items of the active version
// (all items when sel is empty). The job outlives ctx's cancellation; use
// CancelExport to stop enqueuing.
func (s *Studio) Export(ctx context.Context, sel content.Selection) (*export.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exporter == nil {
		return nil, ErrExportNotConfigured
	}
	if s.job != nil {
		select {
		case <-s.job.Done():
		default:
			return nil, ErrExportInProgress
		}
	}
	active := s.history.GetActive(s.activeID)
	if active == nil {
		return nil, ErrNoActiveVersion
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := s.exporter.Start(jobCtx, active, sel)
	s.job = job
	s.cancelEx = cancel

	log := s.root.ExportLogger(active.ID)
	cur, total := job.Progress()
	log.Info("Export started").Int("total", total).Int("current", cur).Send()

	start := time.Now()
	go func() {
		defer cancel()
		summary, err := job.Wait()
		if s.metrics != nil {
			s.metrics.RecordExportRun(time.Since(start))
		}
		if err != nil {
			log.Error("Export manifest not written").Err(err).Send()
			return
		}
		log.Info("Export finished").
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Bool("cancelled", summary.Cancelled).
			Str("manifest", summary.ManifestName).
			Send()
	}()
	return job, nil
}

// CancelExport stops the running export from enqueuing further items
func (s *Studio) CancelExport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelEx != nil {
		s.cancelEx()
	}
}

// ExportStatus reports progress of the last export, if any
func (s *Studio) ExportStatus() (ExportStatus, bool) {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job == nil {
		return ExportStatus{}, false
	}

	cur, total := job.Progress()
	st := ExportStatus{Current: cur, Total: total}
	select {
	case <-job.Done():
		st.Done = true
		st.Summary, _ = job.Wait()
	default:
	}
	return st, true
}

func (s *Studio) onExportItem(r export.ItemResult) {
	if s.metrics != nil {
		s.metrics.RecordExportItem(r.Failure == nil)
	}
	reason := ""
	if r.Failure != nil {
		reason = r.Failure.Reason
	}
	s.log.LogExportItem(r.Meta.ID, r.Meta.ContentFile, r.Duration, reason)
}
