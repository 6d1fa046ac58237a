package memory

import (
	"context"
	"sync"
)

// Store is an in-memory snapshot adapter. It records every Save call so tests
// can assert on both the returned state and the write-through traffic, and it
// backs adapterless local runs.
type Store struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves map[string][][]byte

	// SaveErr, when set, is returned by every Save. Used to exercise the
	// swallow-and-log persistence policy.
	SaveErr error
}

func New() *Store {
	return &Store{
		data:  make(map[string][]byte),
		saves: make(map[string][][]byte),
	}
}

// Seed places a snapshot under key without recording a save.
func (s *Store) Seed(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), body...)
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), body...), true, nil
}

func (s *Store) Save(_ context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	cp := append([]byte(nil), body...)
	s.data[key] = cp
	s.saves[key] = append(s.saves[key], cp)
	return nil
}

// Saves returns every snapshot written under key, in order.
func (s *Store) Saves(key string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.saves[key]...)
}
