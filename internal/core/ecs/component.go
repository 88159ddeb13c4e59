package ecs

import "sort"

// Removable is implemented by all component stores so the World can bulk-remove
// an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store is a generic typed component store. Iteration follows entity id order so
// every pass over the hive is deterministic.
type Store[T any] struct {
	data  map[EntityID]*T
	ids   []EntityID
	dirty bool
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 64),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.ids = append(s.ids, id)
		s.dirty = true
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each visits every component in entity id order.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	s.sortIDs()
	for _, id := range s.ids {
		fn(id, s.data[id])
	}
}

func (s *Store[T]) sortIDs() {
	if !s.dirty {
		return
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	s.dirty = false
}

// Each2 visits entities holding both components, in entity id order of sa.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	sa.Each(func(id EntityID, a *A) {
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	})
}
