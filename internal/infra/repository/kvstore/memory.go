package kvstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps entries in process memory. It is used for tests and
// for running without a database.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

func (m *MemoryBackend) Init(_ context.Context) error {
	return nil
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.data[key] = stored
	m.mu.Unlock()

	return nil
}

// Scan visits keys in sorted order. Entries are read one at a time, so
// writes made by the visitor are allowed.
func (m *MemoryBackend) Scan(ctx context.Context, visit Visitor) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := m.Get(ctx, k)
		if err == ErrCacheMiss {
			continue
		}
		if err != nil {
			return err
		}

		if err := visit(ctx, k, value); err != nil {
			return err
		}
	}

	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
