// Package metadata stores small key/value settings and derived state such
// as the recently used cards list.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns all pairs whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}
