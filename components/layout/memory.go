package layout

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBackend provides a concurrency-safe in-process Backend, useful for
// tests and single-session demos.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[Mode]map[string]json.RawMessage
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[Mode]map[string]json.RawMessage{}}
}

// ReadAll returns every stored field for the mode.
func (m *MemoryBackend) ReadAll(_ context.Context, mode Mode) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]json.RawMessage{}
	for key, value := range m.data[mode] {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out, nil
}

// Write replaces a single field for the mode.
func (m *MemoryBackend) Write(_ context.Context, mode Mode, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.data[mode]
	if !ok {
		fields = map[string]json.RawMessage{}
		m.data[mode] = fields
	}
	fields[key] = append(json.RawMessage(nil), value...)
	return nil
}
