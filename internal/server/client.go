package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nainya/copyforge/pkg/content"
)

// Client calls the studio service over an existing connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Generate(ctx context.Context, tool content.ToolKind, brief content.Brief) (*VersionView, error) {
	return invoke[VersionView](ctx, c, "Generate", &GenerateRequest{Tool: tool, Brief: brief})
}

func (c *Client) Regenerate(ctx context.Context, tool content.ToolKind) (*RegenerateResponse, error) {
	return invoke[RegenerateResponse](ctx, c, "Regenerate", &ToolRequest{Tool: tool})
}

func (c *Client) GetActive(ctx context.Context, tool content.ToolKind, favoritesFirst bool) (*VersionView, error) {
	return invoke[VersionView](ctx, c, "GetActive", &ActiveRequest{Tool: tool, FavoritesFirst: favoritesFirst})
}

func (c *Client) ListVersions(ctx context.Context, tool content.ToolKind) (*ListVersionsResponse, error) {
	return invoke[ListVersionsResponse](ctx, c, "ListVersions", &ToolRequest{Tool: tool})
}

func (c *Client) SelectVersion(ctx context.Context, tool content.ToolKind, versionID string) error {
	_, err := invoke[Empty](ctx, c, "SelectVersion", &VersionRequest{Tool: tool, VersionID: versionID})
	return err
}

func (c *Client) DeleteVersion(ctx context.Context, tool content.ToolKind, versionID string) error {
	_, err := invoke[Empty](ctx, c, "DeleteVersion", &VersionRequest{Tool: tool, VersionID: versionID})
	return err
}

func (c *Client) BeginEdit(ctx context.Context, tool content.ToolKind, itemID string) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, "BeginEdit", &ItemRequest{Tool: tool, ItemID: itemID})
}

func (c *Client) SetDraft(ctx context.Context, tool content.ToolKind, draft string) error {
	_, err := invoke[Empty](ctx, c, "SetDraft", &DraftRequest{Tool: tool, Draft: draft})
	return err
}

func (c *Client) CommitEdit(ctx context.Context, tool content.ToolKind) (*CommitResponse, error) {
	return invoke[CommitResponse](ctx, c, "CommitEdit", &ToolRequest{Tool: tool})
}

func (c *Client) CancelEdit(ctx context.Context, tool content.ToolKind) error {
	_, err := invoke[Empty](ctx, c, "CancelEdit", &ToolRequest{Tool: tool})
	return err
}

func (c *Client) ResetItem(ctx context.Context, tool content.ToolKind, itemID string) error {
	_, err := invoke[Empty](ctx, c, "ResetItem", &ItemRequest{Tool: tool, ItemID: itemID})
	return err
}

func (c *Client) ToggleCompare(ctx context.Context, tool content.ToolKind, itemID string) (bool, error) {
	resp, err := invoke[CompareResponse](ctx, c, "ToggleCompare", &ItemRequest{Tool: tool, ItemID: itemID})
	if err != nil {
		return false, err
	}
	return resp.Comparing, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, tool content.ToolKind, itemID string) error {
	_, err := invoke[Empty](ctx, c, "ToggleFavorite", &ItemRequest{Tool: tool, ItemID: itemID})
	return err
}

func (c *Client) Export(ctx context.Context, tool content.ToolKind, itemIDs ...string) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c, "Export", &ExportRequest{Tool: tool, ItemIDs: itemIDs})
}

func (c *Client) ExportProgress(ctx context.Context, tool content.ToolKind) (*ExportProgressResponse, error) {
	return invoke[ExportProgressResponse](ctx, c, "ExportProgress", &ToolRequest{Tool: tool})
}

func (c *Client) CancelExport(ctx context.Context, tool content.ToolKind) error {
	_, err := invoke[Empty](ctx, c, "CancelExport", &ToolRequest{Tool: tool})
	return err
}

func (c *Client) SaveDraft(ctx context.Context, tool content.ToolKind, brief content.Brief) error {
	_, err := invoke[Empty](ctx, c, "SaveDraft", &ConfigRequest{Tool: tool, Brief: brief})
	return err
}

func (c *Client) LoadDraft(ctx context.Context, tool content.ToolKind) (content.Brief, error) {
	resp, err := invoke[BriefResponse](ctx, c, "LoadDraft", &ToolRequest{Tool: tool})
	if err != nil {
		return content.Brief{}, err
	}
	return resp.Brief, nil
}

func (c *Client) SaveConfig(ctx context.Context, tool content.ToolKind, name string, brief content.Brief) error {
	_, err := invoke[Empty](ctx, c, "SaveConfig", &ConfigRequest{Tool: tool, Name: name, Brief: brief})
	return err
}

func (c *Client) LoadConfig(ctx context.Context, tool content.ToolKind, name string) (content.Brief, error) {
	resp, err := invoke[BriefResponse](ctx, c, "LoadConfig", &ConfigRequest{Tool: tool, Name: name})
	if err != nil {
		return content.Brief{}, err
	}
	return resp.Brief, nil
}

func (c *Client) ListConfigs(ctx context.Context, tool content.ToolKind) ([]string, error) {
	resp, err := invoke[ListConfigsResponse](ctx, c, "ListConfigs", &ToolRequest{Tool: tool})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}
