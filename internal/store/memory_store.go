package store

import (
	"sort"
	"sync"
	"time"

	"feature-service/internal/model"

	"github.com/google/uuid"
)

// MemoryComponentStore is a mutex-guarded in-memory ComponentStore. It backs
// the engine and handler tests, where a database is not available.
type MemoryComponentStore struct {
	mu    sync.RWMutex
	roots map[string]model.Component
	seq   map[string]int
	next  int
}

func NewMemoryComponentStore() *MemoryComponentStore {
	return &MemoryComponentStore{
		roots: make(map[string]model.Component),
		seq:   make(map[string]int),
	}
}

// snapshot returns copies sorted by createdAt descending. Insertion sequence
// breaks ties so ordering stays deterministic when timestamps collide.
func (s *MemoryComponentStore) snapshot(filter func(model.Component) bool) []model.Component {
	components := make([]model.Component, 0, len(s.roots))
	for _, c := range s.roots {
		if filter == nil || filter(c) {
			components = append(components, cloneComponent(c))
		}
	}
	sort.Slice(components, func(i, j int) bool {
		ci, cj := components[i], components[j]
		if !ci.CreatedAt.Equal(cj.CreatedAt) {
			return ci.CreatedAt.After(cj.CreatedAt)
		}
		return s.seq[ci.ID] > s.seq[cj.ID]
	})
	return components
}

func (s *MemoryComponentStore) ListRoots() ([]model.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(nil), nil
}

func (s *MemoryComponentStore) ListByFeature(featureID string) ([]model.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(c model.Component) bool {
		return c.FeatureID != nil && *c.FeatureID == featureID
	}), nil
}

func (s *MemoryComponentStore) Get(id string) (*model.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.roots[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneComponent(c)
	return &clone, nil
}

func (s *MemoryComponentStore) Insert(c *model.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	s.next++
	s.seq[c.ID] = s.next
	s.roots[c.ID] = cloneComponent(*c)
	return nil
}

func (s *MemoryComponentStore) Save(c *model.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roots[c.ID]; !ok {
		return ErrNotFound
	}
	s.roots[c.ID] = cloneComponent(*c)
	return nil
}

func (s *MemoryComponentStore) Delete(id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roots[id]; !ok {
		return 0, nil
	}
	delete(s.roots, id)
	delete(s.seq, id)
	return 1, nil
}

// cloneComponent deep-copies a component so callers never share child slices
// with the stored document.
func cloneComponent(c model.Component) model.Component {
	clone := c
	if c.Children != nil {
		clone.Children = make(model.ComponentList, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = cloneComponent(child)
		}
	}
	return clone
}
