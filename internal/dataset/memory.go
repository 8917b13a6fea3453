package dataset

import (
	"sync"

	"collegeview/internal/domain"
)

// Memory is an in-memory DatasetProvider. LoadAll hands out a copy, so
// callers can never mutate the held records.
type Memory struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewMemory returns a provider holding a copy of records.
func NewMemory(records []domain.Record) *Memory {
	m := &Memory{}
	m.Replace(records)
	return m
}

// LoadAll returns a copy of the held records.
func (m *Memory) LoadAll() []domain.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Replace swaps the held records for a copy of records.
func (m *Memory) Replace(records []domain.Record) {
	cp := make([]domain.Record, len(records))
	copy(cp, records)
	m.mu.Lock()
	m.records = cp
	m.mu.Unlock()
}

// Len returns the number of held records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
