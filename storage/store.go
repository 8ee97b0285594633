package storage

import (
	"context"
)

// Object describes a stored blob.
type Object struct {
	Path        string
	ContentType string
	Size        int64
}

// ObjectStore persists binary blobs under hierarchical paths and hands out
// public URLs for them.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (*Object, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
	RemovePrefix(ctx context.Context, prefix string) error
	PublicURL(path string) string
}
