package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used by tests and local runs without a
// database. Returned slices are copies; callers cannot mutate stored state.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *Memory) Scan(_ context.Context) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([][]byte, 0, len(keys))
	for _, k := range keys {
		doc := m.docs[k]
		out := make([]byte, len(doc))
		copy(out, doc)
		docs = append(docs, out)
	}
	return docs, nil
}

func (m *Memory) Put(_ context.Context, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(doc))
	copy(stored, doc)
	m.docs[key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[key]; !ok {
		return false, nil
	}
	delete(m.docs, key)
	return true, nil
}
