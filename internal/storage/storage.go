// Package storage provides record persistence for rejection memory.
//
// Two tiers back every record: a volatile key-value store (Redis) for fast
// reads and a durable store (Postgres or local JSON files) that survives
// restarts. DualStore composes the two with write-both / read-preferred
// semantics and keeps all backend failure handling at this boundary, so
// callers never branch on backend type or see a storage error they must
// handle beyond "record absent".
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored record.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract shared by both tiers.
type Store interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Name identifies the backend in logs.
	Name() string
}
