package storage

import (
	"context"
	"sync"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Memory is a trivial in-process Backend: a mutex-guarded map. It
// never touches disk or network and is the default for tests and
// short-lived CLI invocations (spec §4.4 "memory").
type Memory struct {
	mu   sync.RWMutex
	data map[atomspace.Handle]Record
}

// NewMemory constructs an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[atomspace.Handle]Record)}
}

// Open is a no-op for Memory; it exists to satisfy Backend.
func (m *Memory) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[atomspace.Handle]Record)
	}
	return nil
}

// Close is a no-op for Memory.
func (m *Memory) Close() error { return nil }

// StoreAtom implements Backend.
func (m *Memory) StoreAtom(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[r.Handle] = r
	return nil
}

// StoreAtoms implements Backend.
func (m *Memory) StoreAtoms(ctx context.Context, rs []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rs {
		m.data[r.Handle] = r
	}
	return nil
}

// FetchAtom implements Backend.
func (m *Memory) FetchAtom(ctx context.Context, h atomspace.Handle) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[h]
	return r, ok, nil
}

// FetchAtoms implements Backend. The result has one entry per input
// handle, nil where no record exists, so callers can align results to
// hs by index.
func (m *Memory) FetchAtoms(ctx context.Context, hs []atomspace.Handle) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, len(hs))
	for i, h := range hs {
		if r, ok := m.data[h]; ok {
			rCopy := r
			out[i] = &rCopy
		}
	}
	return out, nil
}

// RemoveAtom implements Backend.
func (m *Memory) RemoveAtom(ctx context.Context, h atomspace.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, h)
	return nil
}

// IterateAtoms implements Backend.
func (m *Memory) IterateAtoms(ctx context.Context, fn func(Record) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.data {
		if !fn(r) {
			break
		}
	}
	return nil
}

// Stats implements Backend.
func (m *Memory) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Stats{BackendTag: "memory"}
	for _, r := range m.data {
		s.AtomCount++
		if r.IsLink {
			s.LinkCount++
		} else {
			s.NodeCount++
		}
	}
	return s, nil
}
