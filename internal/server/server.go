// Package server implements the gRPC copyforge studio service
package server

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nainya/copyforge/internal/storage"
	"github.com/nainya/copyforge/internal/studio"
	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/override"
)

// Server exposes one studio per tool
type Server struct {
	studios map[content.ToolKind]*studio.Studio
}

// NewServer creates a server over the given studios
func NewServer(studios ...*studio.Studio) *Server {
	s := &Server{studios: make(map[content.ToolKind]*studio.Studio, len(studios))}
	for _, st := range studios {
		s.studios[st.Tool().Kind] = st
	}
	return s
}

func (s *Server) studio(kind content.ToolKind) (*studio.Studio, error) {
	st, ok := s.studios[kind]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown tool %q", kind)
	}
	return st, nil
}

// ========== Generation ==========

func (s *Server) Generate(ctx context.Context, req *GenerateRequest) (*VersionView, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	vs, err := st.Generate(ctx, req.Brief)
	if err != nil {
		return nil, toStatus(err)
	}
	view := versionView(st, vs)
	return &view, nil
}

func (s *Server) Regenerate(ctx context.Context, req *ToolRequest) (*RegenerateResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	res, err := st.Regenerate(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RegenerateResponse{
		Version:     versionView(st, res.Version),
		Message:     res.Message,
		Drifted:     res.Drift.Drifted(),
		Corrections: res.Drift.Corrections(),
		Locked:      res.Locked,
	}, nil
}

// ========== Versions ==========

func (s *Server) GetActive(ctx context.Context, req *ActiveRequest) (*VersionView, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	active := st.Active()
	if active == nil {
		return nil, toStatus(studio.ErrNoActiveVersion)
	}
	view := versionView(st, active)
	if req.FavoritesFirst {
		items, err := st.Items(true)
		if err != nil {
			return nil, toStatus(err)
		}
		view.Items = itemViews(st, items)
	}
	return &view, nil
}

func (s *Server) ListVersions(ctx context.Context, req *ToolRequest) (*ListVersionsResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	resp := &ListVersionsResponse{Versions: []VersionSummary{}}
	for _, sum := range st.Versions() {
		resp.Versions = append(resp.Versions, VersionSummary{
			ID:          sum.ID,
			CreatedAt:   sum.CreatedAt,
			ItemCount:   sum.ItemCount,
			EditedCount: sum.EditedCount,
			Active:      sum.Active,
		})
	}
	_, resp.Manual = st.ManualSelection()
	return resp, nil
}

func (s *Server) SelectVersion(ctx context.Context, req *VersionRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.Select(ctx, req.VersionID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) DeleteVersion(ctx context.Context, req *VersionRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if req.VersionID == "" {
		return nil, status.Error(codes.InvalidArgument, "version_id is required")
	}
	if err := st.Delete(ctx, req.VersionID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// ========== Editing ==========

func (s *Server) BeginEdit(ctx context.Context, req *ItemRequest) (*SessionResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	sess, err := st.BeginEdit(req.ItemID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SessionResponse{ItemID: sess.ItemID, Field: sess.Field, Draft: sess.Draft}, nil
}

func (s *Server) SetDraft(ctx context.Context, req *DraftRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.SetDraft(req.Draft); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) CommitEdit(ctx context.Context, req *ToolRequest) (*CommitResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	res, err := st.Commit(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CommitResponse{Outcome: res.Outcome.String(), State: res.State.String(), Message: res.Message}, nil
}

func (s *Server) CancelEdit(ctx context.Context, req *ToolRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.Cancel(); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) ResetItem(ctx context.Context, req *ItemRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.Reset(ctx, req.ItemID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) ToggleCompare(ctx context.Context, req *ItemRequest) (*CompareResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	open, err := st.ToggleCompare(req.ItemID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CompareResponse{Comparing: open}, nil
}

func (s *Server) ToggleFavorite(ctx context.Context, req *ItemRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.ToggleFavorite(ctx, req.ItemID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// ========== Export ==========

func (s *Server) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	job, err := st.Export(ctx, content.NewSelection(req.ItemIDs...))
	if err != nil {
		return nil, toStatus(err)
	}
	_, total := job.Progress()
	return &ExportResponse{Total: total}, nil
}

func (s *Server) ExportProgress(ctx context.Context, req *ToolRequest) (*ExportProgressResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	es, ok := st.ExportStatus()
	if !ok {
		return &ExportProgressResponse{}, nil
	}
	resp := &ExportProgressResponse{Started: true, Current: es.Current, Total: es.Total, Done: es.Done}
	if es.Done {
		sum := es.Summary
		resp.Summary = &sum
	}
	return resp, nil
}

func (s *Server) CancelExport(ctx context.Context, req *ToolRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	st.CancelExport()
	return &Empty{}, nil
}

// ========== Drafts and saved configurations ==========

func (s *Server) SaveDraft(ctx context.Context, req *ConfigRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := st.SaveDraft(ctx, req.Brief); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) LoadDraft(ctx context.Context, req *ToolRequest) (*BriefResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	b, err := st.LoadDraft(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BriefResponse{Brief: b}, nil
}

func (s *Server) SaveConfig(ctx context.Context, req *ConfigRequest) (*Empty, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if err := st.SaveConfig(ctx, req.Name, req.Brief); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) LoadConfig(ctx context.Context, req *ConfigRequest) (*BriefResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	b, err := st.LoadConfig(ctx, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BriefResponse{Brief: b}, nil
}

func (s *Server) ListConfigs(ctx context.Context, req *ToolRequest) (*ListConfigsResponse, error) {
	st, err := s.studio(req.Tool)
	if err != nil {
		return nil, err
	}
	names, err := st.ListConfigs(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if names == nil {
		names = []string{}
	}
	return &ListConfigsResponse{Names: names}, nil
}

// ========== Helpers ==========

func versionView(st *studio.Studio, vs *content.VersionSet) VersionView {
	return VersionView{
		ID:        vs.ID,
		Tool:      vs.Tool,
		CreatedAt: vs.CreatedAt,
		Brief:     vs.Brief,
		Items:     itemViews(st, vs.Items),
	}
}

func itemViews(st *studio.Studio, items []content.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		state, _ := st.State(it.ID)
		out = append(out, ItemView{
			ID:            it.ID,
			Label:         it.Label,
			Field:         it.Field,
			Generated:     it.Generated,
			Effective:     it.Effective(),
			EditedVisible: it.IsEditedVisible(),
			State:         state.String(),
			Favorite:      it.Favorite,
			AssetURL:      it.AssetURL,
			Attributes:    it.Attributes,
			UpdatedAt:     it.UpdatedAt,
		})
	}
	return out
}

// toStatus maps studio errors onto gRPC codes
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, override.ErrItemNotFound),
		errors.Is(err, studio.ErrVersionNotFound),
		errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, override.ErrEditInProgress),
		errors.Is(err, override.ErrNoSession),
		errors.Is(err, studio.ErrNoActiveVersion),
		errors.Is(err, studio.ErrPersistenceNotEnabled),
		errors.Is(err, studio.ErrExportNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, studio.ErrGenerationInProgress),
		errors.Is(err, studio.ErrExportInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, studio.ErrGeneratorFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, studio.ErrUnknownTool):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
}
