package securestore

import "context"

// Store is durable key-value storage for tokens, the selected employee id
// and per-email credential preferences. Implementations are expected to
// encrypt at rest; callers treat them as opaque string storage.
//
// An absent key is ("", nil); absence is never an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
