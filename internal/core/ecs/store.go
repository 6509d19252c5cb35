package ecs

import "sort"

// Removable is a per-entity data store the World clears on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store maps entities to pointer data of one type. Iteration is in ascending
// id order so seeded simulations replay identically.
type Store[T any] struct {
	data map[EntityID]*T
	ids  []EntityID // sorted cache, nil when stale
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 64)}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.ids = nil
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; ok {
		delete(s.data, id)
		s.ids = nil
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

// IDs returns the stored ids in ascending order. The slice is shared and
// must not be modified.
func (s *Store[T]) IDs() []EntityID {
	if s.ids == nil {
		s.ids = make([]EntityID, 0, len(s.data))
		for id := range s.data {
			s.ids = append(s.ids, id)
		}
		sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	}
	return s.ids
}

// Each visits entries in id order. fn must not add or remove entries.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.IDs() {
		fn(id, s.data[id])
	}
}
