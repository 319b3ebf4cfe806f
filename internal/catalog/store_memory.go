package catalog

import (
	"context"
	"sort"
	"sync"

	"ProductDesk/internal/product"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]product.Product
}

func NewMemStore(products ...product.Product) *MemStore {
	s := &MemStore{m: make(map[string]product.Product, len(products))}
	for _, p := range products {
		s.m[p.ID] = p
	}
	return s
}

// NewStore returns a memory store holding the seed catalog.
func NewStore() *MemStore {
	return NewMemStore(seed()...)
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (product.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}

func (s *MemStore) Create(ctx context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[p.ID]; ok {
		return ErrExists
	}
	s.m[p.ID] = p
	return nil
}

func (s *MemStore) Update(ctx context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.m[p.ID]
	if !ok {
		return product.Product{}, ErrNotFound
	}
	p.Rating, p.RatingCount = cur.Rating, cur.RatingCount
	s.m[p.ID] = p
	return p, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return product.Product{}, ErrNotFound
	}
	delete(s.m, id)
	return p, nil
}
