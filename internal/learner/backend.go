package learner

import (
	"context"
	"slices"
	"sync"
)

// Backend persists opaque records by key. Get returns nil for a missing key.
// Update runs fn on the current value and stores its result atomically with
// respect to every other writer of the same key, including other processes
// sharing the database; a nil result writes nothing. *store.StateRepo
// satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) error
}

// MemoryBackend is an in-process Backend used by tests and one-shot commands
// that should not touch disk.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data[key]), nil
}

func (m *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *MemoryBackend) Update(_ context.Context, key string, fn func(cur []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(slices.Clone(m.data[key]))
	if err != nil || next == nil {
		return err
	}
	m.data[key] = slices.Clone(next)
	return nil
}
