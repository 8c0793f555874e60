package server

import (
	"time"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/drift"
	"github.com/nainya/copyforge/pkg/export"
	"github.com/nainya/copyforge/pkg/facts"
)

// ToolRequest addresses one tool's studio
type ToolRequest struct {
	Tool content.ToolKind `json:"tool"`
}

type GenerateRequest struct {
	Tool  content.ToolKind `json:"tool"`
	Brief content.Brief    `json:"brief"`
}

type ActiveRequest struct {
	Tool           content.ToolKind `json:"tool"`
	FavoritesFirst bool             `json:"favorites_first,omitempty"`
}

type VersionRequest struct {
	Tool      content.ToolKind `json:"tool"`
	VersionID string           `json:"version_id"`
}

type ItemRequest struct {
	Tool   content.ToolKind `json:"tool"`
	ItemID string           `json:"item_id"`
}

type DraftRequest struct {
	Tool  content.ToolKind `json:"tool"`
	Draft string           `json:"draft"`
}

type ExportRequest struct {
	Tool    content.ToolKind `json:"tool"`
	ItemIDs []string         `json:"item_ids,omitempty"` // empty exports every item
}

type ConfigRequest struct {
	Tool  content.ToolKind `json:"tool"`
	Name  string           `json:"name"`
	Brief content.Brief    `json:"brief"`
}

// Empty is returned by operations with no payload
type Empty struct{}

// ItemView is an item as the UI renders it
type ItemView struct {
	ID            string            `json:"id"`
	Label         string            `json:"label"`
	Field         content.Field     `json:"field"`
	Generated     string            `json:"generated"`
	Effective     string            `json:"effective"`
	EditedVisible bool              `json:"edited_visible"`
	State         string            `json:"state"`
	Favorite      bool              `json:"favorite,omitempty"`
	AssetURL      string            `json:"asset_url,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type VersionView struct {
	ID        string           `json:"id"`
	Tool      content.ToolKind `json:"tool"`
	CreatedAt time.Time        `json:"created_at"`
	Brief     content.Brief    `json:"brief"`
	Items     []ItemView       `json:"items"`
}

type RegenerateResponse struct {
	Version     VersionView        `json:"version"`
	Message     string             `json:"message"`
	Drifted     bool               `json:"drifted"`
	Corrections []drift.Correction `json:"corrections,omitempty"`
	Locked      facts.LockedFacts  `json:"locked"`
}

type VersionSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ItemCount   int       `json:"item_count"`
	EditedCount int       `json:"edited_count"`
	Active      bool      `json:"active"`
}

type ListVersionsResponse struct {
	Versions []VersionSummary `json:"versions"`
	Manual   bool             `json:"manual"`
}

type SessionResponse struct {
	ItemID string        `json:"item_id"`
	Field  content.Field `json:"field"`
	Draft  string        `json:"draft"`
}

type CommitResponse struct {
	Outcome string `json:"outcome"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

type CompareResponse struct {
	Comparing bool `json:"comparing"`
}

type ExportResponse struct {
	Total int `json:"total"`
}

type ExportProgressResponse struct {
	Started bool            `json:"started"`
	Current int             `json:"current"`
	Total   int             `json:"total"`
	Done    bool            `json:"done"`
	Summary *export.Summary `json:"summary,omitempty"`
}

type BriefResponse struct {
	Brief content.Brief `json:"brief"`
}

type ListConfigsResponse struct {
	Names []string `json:"names"`
}
