// Package storage provides the durable local key-value surface backing the
// cart and wishlist snapshots. Values are opaque JSON blobs; there are no
// transactional guarantees across keys.
package storage

import (
	"context"
	"errors"
)

// Well-known snapshot keys.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// ErrNotFound is returned by Read when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence contract: synchronous write-through on every
// mutation, last write wins, restart recovery only.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
