package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to cold storage. Paths are forward-slash keys
// relative to the configured bucket.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	// PutMultipart uploads large payloads in parts of partSize bytes.
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
