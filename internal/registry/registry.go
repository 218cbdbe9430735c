// Package registry tracks the live map instances, at most one per target.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/logger"
)

// Manager owns the map instances of a process.
type Manager struct {
	cfg instance.Config
	log logger.Logger

	mu        sync.RWMutex
	instances map[string]*instance.Instance
}

// New creates an empty manager. cfg is handed to every instance it creates.
func New(cfg instance.Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Manager{
		cfg:       cfg,
		log:       cfg.Logger.With("component", "registry"),
		instances: make(map[string]*instance.Instance),
	}
}

// Create builds an instance for target and registers it.
func (m *Manager) Create(ctx context.Context, target string, opts instance.Options) (*instance.Instance, error) {
	if target == "" {
		return nil, instance.ErrMissingTarget
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.instances[target]; exists {
		return nil, &DuplicateInstanceError{Target: target}
	}

	inst, err := instance.New(ctx, target, opts, m.cfg)
	if err != nil {
		return nil, err
	}
	m.instances[target] = inst
	m.log.Info("map created", "target", target, "drawing", opts.Drawing)
	return inst, nil
}

// Get looks up the instance bound to target.
func (m *Manager) Get(target string) (*instance.Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[target]
	return inst, ok
}

// Remove disposes the instance bound to target and forgets it.
func (m *Manager) Remove(target string) error {
	m.mu.Lock()
	inst, ok := m.instances[target]
	delete(m.instances, target)
	m.mu.Unlock()

	if !ok {
		return &NotFoundError{Target: target}
	}
	inst.Dispose()
	m.log.Info("map removed", "target", target)
	return nil
}

// List returns the registered targets in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	targets := make([]string, 0, len(m.instances))
	for t := range m.instances {
		targets = append(targets, t)
	}
	m.mu.RUnlock()
	sort.Strings(targets)
	return targets
}

// Len returns the number of live instances.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// Each calls fn for every instance in target order.
func (m *Manager) Each(fn func(*instance.Instance)) {
	for _, target := range m.List() {
		if inst, ok := m.Get(target); ok {
			fn(inst)
		}
	}
}

// Close removes every instance.
func (m *Manager) Close() {
	for _, target := range m.List() {
		_ = m.Remove(target)
	}
}
