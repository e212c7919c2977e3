package snapshot

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns a process-local Repository. Values do not survive a restart.
func NewMemory() Repository {
	return &memoryRepo{blobs: make(map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *memoryRepo) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = append([]byte(nil), value...)
	return nil
}
