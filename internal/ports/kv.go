package ports

import "context"

// KV is a small key-value capability for app state (last-used inputs and
// similar). Adapters may back it with SQLite or memory.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
