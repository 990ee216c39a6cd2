package store

import (
	"context"
	"sync"

	"github.com/iliyamo/radical-ticket/internal/model"
)

// Memory is a process-local Backend.  It is the default when no external
// store is configured and the reference implementation in tests.
type Memory struct {
	mu      sync.Mutex
	records map[string]model.Record
	count   uint64
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]model.Record)}
}

func (m *Memory) Get(_ context.Context, key string) (model.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	return rec, ok, nil
}

func (m *Memory) PutIfVersion(_ context.Context, key string, expected uint64, rec model.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[key]
	if !ok || cur.Version != expected {
		return false, nil
	}
	m.records[key] = rec
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Put(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	m.records[rec.Key] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) Count(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, nil
}

func (m *Memory) SetCount(_ context.Context, n uint64) error {
	m.mu.Lock()
	m.count = n
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
