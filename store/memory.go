package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrInvalidID = errors.New("invalid entity id")

// Persistence is generic keyed storage. Entities live in named
// collections and are addressed by integer IDs.
type Persistence interface {
	Find(collection string, id int) (any, bool)

	// FindAll returns the entities of a collection in ascending ID order.
	FindAll(collection string) []any

	// Save appends entity under the next free ID and returns that ID.
	Save(collection string, entity any) int

	// SaveAt inserts or replaces the entity stored under id.
	SaveAt(collection string, id int, entity any) error

	Remove(collection string, id int) bool

	// Len returns the number of entities in a collection.
	Len(collection string) int
}

type collection struct {
	entities map[int]any
	nextID   int
}

type MemoryStore struct {
	sync.RWMutex
	collections map[string]*collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*collection),
	}
}

func (s *MemoryStore) Find(name string, id int) (any, bool) {
	s.RLock()
	defer s.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	entity, ok := c.entities[id]
	return entity, ok
}

func (s *MemoryStore) FindAll(name string) []any {
	s.RLock()
	defer s.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []any{}
	}

	ids := make([]int, 0, len(c.entities))
	for id := range c.entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]any, 0, len(ids))
	for _, id := range ids {
		result = append(result, c.entities[id])
	}
	return result
}

func (s *MemoryStore) Save(name string, entity any) int {
	s.Lock()
	defer s.Unlock()

	c := s.collection(name)
	id := c.nextID
	c.entities[id] = entity
	c.nextID++
	return id
}

func (s *MemoryStore) SaveAt(name string, id int, entity any) error {
	if id < 0 {
		return fmt.Errorf("%w: %d in collection %s", ErrInvalidID, id, name)
	}
	s.Lock()
	defer s.Unlock()

	c := s.collection(name)
	c.entities[id] = entity
	if id >= c.nextID {
		c.nextID = id + 1
	}
	return nil
}

func (s *MemoryStore) Remove(name string, id int) bool {
	s.Lock()
	defer s.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return false
	}
	if _, exists := c.entities[id]; !exists {
		return false
	}
	delete(c.entities, id)
	return true
}

func (s *MemoryStore) Len(name string) int {
	s.RLock()
	defer s.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.entities)
	}
	return 0
}

func (s *MemoryStore) collection(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{entities: make(map[int]any)}
		s.collections[name] = c
	}
	return c
}
