// Package local stores blobs on the filesystem under the dot directory and
// serves them from the API's /files/ route.
package local

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes blobs into a single flat directory. Keys are
// uuid-prefixed to avoid collisions between same-named uploads.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates a filesystem blob store rooted at dir. baseURL is the
// public prefix the API serves the directory under (e.g.
// "http://localhost:8080/files").
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	return &Store{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the directory blobs are written into, for the file server.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes the blob and returns its public URL. The stored filename keeps
// the original extension (or derives one from the content type) so the file
// server reports a sensible Content-Type.
func (s *Store) Put(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := uuid.NewString() + extension(name, contentType)

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing blob: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing blob file: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error {
	return nil
}

func extension(name, contentType string) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
