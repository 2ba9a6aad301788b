package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value at key into a T. found is false when the key is absent.
func GetJSON[T any](ctx context.Context, r Repository, key string) (v T, found bool, err error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, fmt.Errorf("decode metadata[%s]: %w", key, err)
	}
	return v, true, nil
}

// SetJSON stores v encoded as JSON under key.
func SetJSON[T any](ctx context.Context, r Repository, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode metadata[%s]: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}
