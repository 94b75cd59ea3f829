// Package storage puts uploaded images somewhere reachable by a public URL:
// an S3-compatible bucket in deployments, the local disk in development.
package storage

import (
	"context"
	"io"
)

// DefaultBucket holds room-design photos, avatars and portfolio images.
const DefaultBucket = "designer-images"

// Store writes an object under key and returns its public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
