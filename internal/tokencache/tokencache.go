// Package tokencache is the transient key-value store backing password
// reset tokens and revoked refresh-token ids. Entries carry a TTL and
// reset tokens are consumed with a single get-and-delete.
package tokencache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or already expired.
var ErrNotFound = errors.New("tokencache: key not found")

// Store is a TTL key-value cache.
type Store interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// GetDel atomically reads and removes key, so a token is consumed
	// at most once.
	GetDel(ctx context.Context, key string) (string, error)
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}
