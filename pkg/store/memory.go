package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Memory keeps encoded documents in a map. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(ctx context.Context, key string) (schema.Form, bool, error) {
	if err := checkContext(ctx, "read", key); err != nil {
		return schema.Form{}, false, err
	}
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return schema.Form{}, false, nil
	}
	form, ok := decode(key, data)
	return form, ok, nil
}

func (m *Memory) Write(ctx context.Context, key string, form schema.Form) error {
	if err := checkContext(ctx, "write", key); err != nil {
		return err
	}
	data, err := encode(key, form)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := checkContext(ctx, "delete", key); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := checkContext(ctx, "keys", prefix); err != nil {
		return nil, err
	}
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

// Raw stores bytes as-is, bypassing encoding. Useful for importing documents
// produced elsewhere.
func (m *Memory) Raw(key string, data []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
}
