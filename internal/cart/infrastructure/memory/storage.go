package memory

import (
	"context"
	"sync"
)

// Storage keeps cart slots in process memory. Used by tests and by
// CART_STORAGE=memory for local runs.
type Storage struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewStorage() *Storage {
	return &Storage{slots: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[sessionID+"/"+key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	s.slots[sessionID+"/"+key] = value
	s.mu.Unlock()
	return nil
}
