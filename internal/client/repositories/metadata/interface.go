// Package metadata is the client's durable key/value storage. It backs the
// token store and comes in three flavours: SQLite, bbolt and a JSON file.
package metadata

import (
	"context"
)

// Repository stores small binary values under string keys.
//
// Get returns (nil, nil) for a missing key. Put writes every pair of values
// atomically. Delete ignores keys that are not present.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
