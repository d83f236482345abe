// Package storage provides the key-value store the session engine persists
// question drafts through. Backends are interchangeable; the engine only ever
// reads and writes JSON blobs by key.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// DraftStore is the persistence boundary for auto-saved drafts. A failed
// write is logged by the caller and is never fatal: the in-memory draft
// stays authoritative until the next successful write.
type DraftStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
