// Package store persists remembered layer visibility.
package store

import (
	"context"
	"sort"
	"sync"
)

// LayerStore remembers layer visibility by key.
type LayerStore interface {
	// Visibility returns the remembered value; ok is false when nothing is stored.
	Visibility(ctx context.Context, key string) (visible bool, ok bool, err error)
	SetVisibility(ctx context.Context, key string, visible bool) error
	// List returns every remembered entry ordered by key.
	List(ctx context.Context) ([]Entry, error)
}

// Entry is one remembered layer visibility.
type Entry struct {
	Key     string `json:"key" doc:"Target and layer title joined by a slash" example:"main-map/Fields"`
	Visible bool   `json:"visible" doc:"Remembered visibility"`
}

// Memory is an in-process LayerStore.
type Memory struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]bool)}
}

func (m *Memory) Visibility(_ context.Context, key string) (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) SetVisibility(_ context.Context, key string, visible bool) error {
	m.mu.Lock()
	m.values[key] = visible
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.values))
	for k, v := range m.values {
		entries = append(entries, Entry{Key: k, Visible: v})
	}
	m.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
