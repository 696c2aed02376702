// Package store provides an insertion-ordered keyed record store whose full
// contents are written through a Persister after every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateKey = errors.New("duplicate primary key")
	ErrKeyChanged   = errors.New("primary key cannot change")
)

// Store holds records of type T keyed by keyOf. Reads see records in the
// order they were first inserted. Mutations hold the write lock until the
// snapshot is saved, so snapshots reach the persister in mutation order.
type Store[T any] struct {
	name      string
	keyOf     func(T) string
	persister Persister

	mu     sync.RWMutex
	loaded bool
	order  []string
	items  map[string]T
}

func New[T any](name string, keyOf func(T) string, persister Persister) *Store[T] {
	return &Store[T]{
		name:      name,
		keyOf:     keyOf,
		persister: persister,
		items:     make(map[string]T),
	}
}

func (s *Store[T]) Name() string {
	return s.name
}

// Load replaces the in-memory contents with the persisted snapshot. A missing
// snapshot yields an empty store.
func (s *Store[T]) Load() error {
	raw, err := s.persister.Load()
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	order := make([]string, 0, len(raw))
	items := make(map[string]T, len(raw))
	for i, entry := range raw {
		var rec T
		if err := json.Unmarshal(entry, &rec); err != nil {
			return fmt.Errorf("load %s: decode record %d: %w", s.name, i, err)
		}
		key := s.keyOf(rec)
		if _, exists := items[key]; !exists {
			order = append(order, key)
		}
		// A later duplicate overwrites the value but keeps the first position.
		items[key] = rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.items = items
	s.loaded = true
	return nil
}

func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store[T]) Insert(rec T) error {
	key := s.keyOf(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return fmt.Errorf("%s %q: %w", s.name, key, ErrDuplicateKey)
	}

	s.items[key] = rec
	s.order = append(s.order, key)

	if err := s.persistLocked(); err != nil {
		delete(s.items, key)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[id]
	return rec, ok
}

// Find returns the first record, in insertion order, that matches.
func (s *Store[T]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.order {
		if rec := s.items[key]; match(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every matching record in insertion order. The result is never nil.
func (s *Store[T]) Filter(match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for _, key := range s.order {
		if rec := s.items[key]; match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store[T]) All() []T {
	return s.Filter(func(T) bool { return true })
}

// Update applies mutate to the record stored under id and persists the result.
// It reports false when no such record exists.
func (s *Store[T]) Update(id string, mutate func(T) (T, error)) (T, bool, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return zero, false, nil
	}

	next, err := mutate(current)
	if err != nil {
		return zero, true, err
	}
	if s.keyOf(next) != id {
		return zero, true, fmt.Errorf("%s %q: %w", s.name, id, ErrKeyChanged)
	}

	s.items[id] = next
	if err := s.persistLocked(); err != nil {
		s.items[id] = current
		return zero, true, err
	}
	return next, true, nil
}

func (s *Store[T]) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return false, nil
	}

	idx := indexOf(s.order, id)
	prevOrder := s.order
	s.order = append(append(make([]string, 0, len(prevOrder)-1), prevOrder[:idx]...), prevOrder[idx+1:]...)
	delete(s.items, id)

	if err := s.persistLocked(); err != nil {
		s.order = prevOrder
		s.items[id] = current
		return false, err
	}
	return true, nil
}

func (s *Store[T]) persistLocked() error {
	snapshot := make([]json.RawMessage, 0, len(s.order))
	for _, key := range s.order {
		raw, err := json.Marshal(s.items[key])
		if err != nil {
			return fmt.Errorf("persist %s: encode %q: %w", s.name, key, err)
		}
		snapshot = append(snapshot, raw)
	}
	if err := s.persister.Save(snapshot); err != nil {
		return fmt.Errorf("persist %s: %w", s.name, err)
	}
	return nil
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}
