// ABOUTME: Remote artifact fetching for exports
// ABOUTME: One plain HTTP GET per item; failures are recorded, never retried

package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxArtifactBytes caps a single fetched artifact
const MaxArtifactBytes = 25 << 20

// Fetcher retrieves a remotely hosted artifact
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPFetcher fetches artifacts over HTTP
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtifactBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxArtifactBytes {
		return nil, "", fmt.Errorf("artifact exceeds %d bytes", MaxArtifactBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
