package session

import (
	"context"
	"encoding/json"
	"sync"
)

// Session is a per-visitor key/value bag. Values round-trip through JSON,
// so only plain strings, numbers, maps and slices survive.
type Session interface {
	ID() string
	// Get decodes the value stored under key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type Store interface {
	Session(id string) Session
}

type Memory struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Session(id string) Session {
	return &memorySession{store: m, id: id}
}

type memorySession struct {
	store *Memory
	id    string
}

func (s *memorySession) ID() string { return s.id }

func (s *memorySession) Get(_ context.Context, key string, dst any) (bool, error) {
	s.store.mu.Lock()
	raw, ok := s.store.data[s.id][key]
	s.store.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *memorySession) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	bag, ok := s.store.data[s.id]
	if !ok {
		bag = make(map[string][]byte)
		s.store.data[s.id] = bag
	}
	bag[key] = raw
	return nil
}

func (s *memorySession) Delete(_ context.Context, key string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.data[s.id], key)
	return nil
}
