package studio

import (
	"context"

	"github.com/nainya/copyforge/pkg/content"
)

// SaveDraft stores unsubmitted form inputs
func (s *Studio) SaveDraft(ctx context.Context, brief content.Brief) error {
	if s.store == nil {
		return ErrPersistenceNotEnabled
	}
	return s.store.SaveDraft(ctx, s.tool.Kind, brief)
}

// LoadDraft returns the stored form inputs
func (s *Studio) LoadDraft(ctx context.Context) (content.Brief, error) {
	if s.store == nil {
		return content.Brief{}, ErrPersistenceNotEnabled
	}
	return s.store.LoadDraft(ctx, s.tool.Kind)
}

// SaveConfig stores a named brief preset
func (s *Studio) SaveConfig(ctx context.Context, name string, brief content.Brief) error {
	if s.store == nil {
		return ErrPersistenceNotEnabled
	}
	return s.store.SaveConfig(ctx, s.tool.Kind, name, brief)
}

// LoadConfig returns a named brief preset
func (s *Studio) LoadConfig(ctx context.Context, name string) (content.Brief, error) {
	if s.store == nil {
		return content.Brief{}, ErrPersistenceNotEnabled
	}
	return s.store.LoadConfig(ctx, s.tool.Kind, name)
}

// ListConfigs returns the names of saved presets
func (s *Studio) ListConfigs(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, ErrPersistenceNotEnabled
	}
	return s.store.ListConfigs(ctx, s.tool.Kind)
}
