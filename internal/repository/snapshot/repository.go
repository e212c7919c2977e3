package snapshot

import "context"

// Repository is a key-value blob store. Each Set replaces the whole value for key.
// Get returns domain.ErrNotFound when nothing is stored under key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
