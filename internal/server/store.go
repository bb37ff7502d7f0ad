package server

import (
	"context"
	"errors"
	"sync"

	"tasksync/internal/service"
)

var (
	// ErrNotFound is returned by Delete when nothing is stored.
	ErrNotFound = errors.New("no data stored")

	// ErrStale is returned by Put when the expected version is not the stored one.
	ErrStale = errors.New("stale version")
)

// State is the stored resource. A fresh store holds version 0 and no data.
// Deleting clears the data and still advances the version.
type State struct {
	Data    *string `json:"data"`
	Version int     `json:"version"`
}

// Store persists the single task list resource.
// Implementations must serialize writes.
type Store interface {
	// Get returns the current state.
	Get(ctx context.Context) (State, error)

	// Put replaces the data if expected matches the stored version, or is
	// service.Overwrite. It returns the new state, or the current one with ErrStale.
	Put(ctx context.Context, data *string, expected int) (State, error)

	// Delete clears the data and bumps the version, returning the new state.
	// It fails with ErrNotFound when nothing is stored.
	Delete(ctx context.Context) (State, error)

	Close() error
}

// MemoryStore keeps the resource in memory.
type MemoryStore struct {
	mu     sync.Mutex
	state  State
	stored bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Put(_ context.Context, data *string, expected int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected != service.Overwrite && expected != m.state.Version {
		return m.state, ErrStale
	}
	m.state = State{Data: data, Version: m.state.Version + 1}
	m.stored = true
	return m.state, nil
}

func (m *MemoryStore) Delete(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stored {
		return m.state, ErrNotFound
	}
	m.state = State{Version: m.state.Version + 1}
	m.stored = false
	return m.state, nil
}

func (m *MemoryStore) Close() error { return nil }
