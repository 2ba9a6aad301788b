// Package imagestore keeps card image blobs outside the database. Blobs are
// addressed by opaque object keys recorded in the card_images table.
package imagestore

import (
	"context"
)

type Store interface {
	// Put stores data under a new object key and returns it.
	Put(ctx context.Context, data []byte) (string, error)
	// Get returns common.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
