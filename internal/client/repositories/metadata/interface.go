// Package metadata is a small key/value table in the local database. The
// client keeps its session there.
package metadata

import (
	"context"
)

// Repository reads and writes raw metadata values. Get returns (nil, nil)
// for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
