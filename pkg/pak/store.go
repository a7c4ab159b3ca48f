package pak

import (
	"fmt"
	"sort"
	"sync"
)

// ModelID identifies a model inside one pak.
type ModelID uint32

// Store is an in-memory pak being built. Models are registered under
// content keys and receive sequential ids.
type Store struct {
	mu     sync.Mutex
	keys   map[string]ModelID
	models []*Model
	names  []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		keys: make(map[string]ModelID),
	}
}

// ID returns the id registered under key.
func (s *Store) ID(key string) (ModelID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.keys[key]
	return id, ok
}

// Register returns the id stored under key, calling build only when the key
// is new. The lookup, the build and the insert run under one lock, so
// concurrent callers never build the same key twice. build must not call
// back into the store. If build fails nothing is registered.
//
// The second return value reports whether build ran.
func (s *Store) Register(key string, build func() (*Model, error)) (ModelID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}

	model, err := build()
	if err != nil {
		return 0, true, err
	}
	if model == nil {
		return 0, true, fmt.Errorf("%w: nil model for %s", ErrInvalidModel, key)
	}

	return s.insert(key, model), true, nil
}

// PushModel registers model under key, replacing nothing: if the key is
// already present the existing id is returned and model is discarded.
func (s *Store) PushModel(key string, model *Model) ModelID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.keys[key]; ok {
		return id
	}
	return s.insert(key, model)
}

func (s *Store) insert(key string, model *Model) ModelID {
	id := ModelID(len(s.models))
	s.models = append(s.models, model)
	s.names = append(s.names, key)
	s.keys[key] = id
	return id
}

// Model returns the model with the given id.
func (s *Store) Model(id ModelID) (*Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.models) {
		return nil, false
	}
	return s.models[id], true
}

// Len returns the number of registered models.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.models)
}

// Keys returns every registered key, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.names))
	copy(keys, s.names)
	sort.Strings(keys)
	return keys
}
