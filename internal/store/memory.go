package store

import (
	"context"
	"sync"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// MemoryStore keeps one CacheEntry per symbol in a mutex-guarded map.
// Put replaces the whole entry, so readers always observe a complete record.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*models.CacheEntry)}
}

func (s *MemoryStore) Get(_ context.Context, symbol string) (*models.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[symbol]
	if !ok {
		return nil, false, nil
	}
	cp := *e
	return &cp, true, nil
}

func (s *MemoryStore) Put(_ context.Context, entry *models.CacheEntry) error {
	cp := *entry
	s.mu.Lock()
	s.entries[entry.Record.Symbol] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Kind() domrepo.StoreKind { return domrepo.StoreMemory }

func (s *MemoryStore) Close() error { return nil }
