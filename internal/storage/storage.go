package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored snapshot. Key includes any store prefix.
type ObjectInfo struct {
	Key  string
	Size int64
}

type PutOptions struct {
	ContentType string
}

// ObjectStore holds the Parquet snapshots of the warehouse tables.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}
