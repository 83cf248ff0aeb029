package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been stored yet.
var ErrNotFound = errors.New("snapshot not found")

// Snapshotter persists one whole document at a time.
// Save replaces the previous document; Load returns the latest one or ErrNotFound.
// Implementations must be safe for concurrent use.
type Snapshotter interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	// Describe names the location for logs and health output.
	Describe() string
}
