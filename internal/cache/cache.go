package cache

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no snapshot exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Cache stores raw catalog payloads keyed by endpoint.
type Cache interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key, value string) error
}
