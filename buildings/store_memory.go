package buildings

import (
	"context"
	"sync"
	"time"

	"campusexplorer/errs"
	"campusexplorer/models"
)

// MemoryStore keeps buildings in process. Used with STORE_DRIVER=memory and
// in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Building
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.Building)}
}

func (s *MemoryStore) Find(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Building, 0, len(s.items))
	for _, b := range s.items {
		if Matches(b, filter) {
			out = append(out, b.Clone())
		}
	}
	SortByName(out)
	return out, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, key string) (models.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.items[key]
	if !ok {
		return models.Building{}, errs.NotFound("building", key)
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Insert(ctx context.Context, b models.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[b.Key]; exists {
		return errs.DuplicateKey(b.Key)
	}
	s.items[b.Key] = b.Clone()
	return nil
}

func (s *MemoryStore) UpdateFields(ctx context.Context, key string, patch models.BuildingPatch, at time.Time) (models.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.items[key]
	if !ok {
		return models.Building{}, errs.NotFound("building", key)
	}
	patch.Apply(&b)
	b.UpdatedAt = at
	s.items[key] = b
	return b.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return errs.NotFound("building", key)
	}
	delete(s.items, key)
	return nil
}
