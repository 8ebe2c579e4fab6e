package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheSize = 10000
	DefaultCacheIdle = 30 * time.Minute
)

// Registry hands out one Store per session, loading it from storage the
// first time the session is seen. At most size stores are kept; a store not
// asked for within idle is dropped and reloaded on the next Get.
type Registry struct {
	log     *slog.Logger
	storage Storage

	mu     sync.Mutex
	stores *expirable.LRU[string, *Store]
}

// NewRegistry falls back to DefaultCacheSize and DefaultCacheIdle for
// non-positive arguments.
func NewRegistry(log *slog.Logger, storage Storage, size int, idle time.Duration) *Registry {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if idle <= 0 {
		idle = DefaultCacheIdle
	}
	return &Registry{
		log:     log,
		storage: storage,
		stores:  expirable.NewLRU[string, *Store](size, nil, idle),
	}
}

func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores.Get(sessionID)
	if !ok {
		s = Load(ctx, r.log, r.storage, sessionID)
	}
	// Add again on a hit: lookups alone do not push the expiry out.
	r.stores.Add(sessionID, s)
	return s
}

// Forget drops the cached store so the next Get reloads from storage.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	r.stores.Remove(sessionID)
	r.mu.Unlock()
}

// Len reports how many stores are cached.
func (r *Registry) Len() int {
	return r.stores.Len()
}
