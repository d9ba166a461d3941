// Package blob stores uploaded component assets (preview images, bundles)
// and hands back public URLs for them.
package blob

import (
	"context"
	"io"
)

// Store persists uploaded blobs and resolves their public URLs.
type Store interface {
	// Put stores the blob under a server-chosen key derived from name and
	// returns the public URL.
	Put(ctx context.Context, name string, contentType string, r io.Reader) (string, error)

	// Close releases any underlying resources.
	Close() error
}
