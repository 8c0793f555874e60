// ABOUTME: Artifact emission targets for exports
// ABOUTME: Local directory, in-memory and Google Cloud Storage sinks

package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"cloud.google.com/go/storage"
)

// Sink emits one named artifact. It is called once per artifact.
type Sink interface {
	Emit(ctx context.Context, name string, data []byte, contentType string) error
}

// DirSink writes artifacts as files under Dir
type DirSink struct {
	Dir string
}

// Emit implements Sink
func (s DirSink) Emit(ctx context.Context, name string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	target := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// MemorySink keeps artifacts in memory
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Emit implements Sink
func (s *MemorySink) Emit(ctx context.Context, name string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.files[name] = buf
	return nil
}

// File returns an emitted artifact
func (s *MemorySink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names returns the emitted artifact names, sorted
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GCSSink uploads artifacts to a Cloud Storage bucket under Prefix
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink creates a sink using application default credentials
func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs sink: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs sink: create client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Emit implements Sink
func (s *GCSSink) Emit(ctx context.Context, name string, data []byte, contentType string) error {
	key := path.Join(s.prefix, name)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s to GCS: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// Close releases the storage client
func (s *GCSSink) Close() error {
	return s.client.Close()
}

var _ io.Closer = (*GCSSink)(nil)
