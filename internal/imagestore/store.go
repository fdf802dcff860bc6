// Package imagestore provides an ordered collection safe for concurrent use.
//
// The store backs the list of uploaded images: entries keep insertion
// order, and removing index k shifts later entries down by one.
package imagestore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// ErrIndexOutOfRange is returned when an index does not address an entry.
var ErrIndexOutOfRange = errors.New("index out of range")

// Store is an ordered list of T guarded by a mutex.
// The zero value is ready to use.
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
}

// New returns a store pre-filled with items, in order.
func New[T any](items ...T) *Store[T] {
	s := &Store[T]{}
	s.items = append(s.items, items...)
	return s
}

// Append adds item at the end and returns its index.
func (s *Store[T]) Append(item T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return len(s.items) - 1
}

// Remove deletes the entry at index i and returns it.
func (s *Store[T]) Remove(i int) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if err := s.checkIndex(i); err != nil {
		return zero, err
	}
	removed := s.items[i]
	s.items = lo.Filter(s.items, func(_ T, idx int) bool { return idx != i })
	return removed, nil
}

// Move relocates the entry at from so that it ends up at index to.
func (s *Store[T]) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(from); err != nil {
		return err
	}
	if err := s.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	item := s.items[from]
	rest := lo.Filter(s.items, func(_ T, idx int) bool { return idx != from })
	out := make([]T, 0, len(s.items))
	out = append(out, rest[:to]...)
	out = append(out, item)
	out = append(out, rest[to:]...)
	s.items = out
	return nil
}

// At returns the entry at index i.
func (s *Store[T]) At(i int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if err := s.checkIndex(i); err != nil {
		return zero, err
	}
	return s.items[i], nil
}

// Len returns the number of entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns a copy of the entries in order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Clear removes every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// checkIndex must be called with the lock held.
func (s *Store[T]) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	return nil
}
