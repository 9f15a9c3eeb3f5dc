package store

import (
	"context"
	"errors"
	"sort"
)

// ErrInjected is returned by Memory when a failure has been requested.
var ErrInjected = errors.New("injected store failure")

// Memory is an in-process store used by tests and dry runs.
type Memory struct {
	data       map[string][]byte
	commits    [][]Write
	FailReads  bool
	FailWrites bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

// Get returns a copy of the value under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.FailReads {
		return nil, false, ErrInjected
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	return m.Commit(ctx, Write{Key: key, Value: value})
}

// Remove deletes keys.
func (m *Memory) Remove(ctx context.Context, keys ...string) error {
	writes := make([]Write, len(keys))
	for i, key := range keys {
		writes[i] = Delete(key)
	}
	return m.Commit(ctx, writes...)
}

// Commit applies writes all at once, or none of them on failure.
func (m *Memory) Commit(_ context.Context, writes ...Write) error {
	if m.FailWrites {
		return ErrInjected
	}
	batch := make([]Write, len(writes))
	for i, w := range writes {
		batch[i] = w
		if w.Value == nil {
			delete(m.data, w.Key)
			continue
		}
		m.data[w.Key] = append([]byte(nil), w.Value...)
	}
	m.commits = append(m.commits, batch)
	return nil
}

// Commits returns every batch applied so far, oldest first.
func (m *Memory) Commits() [][]Write {
	return m.commits
}

// Keys lists stored keys in order.
func (m *Memory) Keys(context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
