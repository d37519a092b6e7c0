package index

import (
	"sync"

	"github.com/dreamware/minikv/internal/record"
)

// Mem is an in-memory Index implementation backing coordinator tests that
// don't need a real on-disk engine. It keys on the same 31-bit IndexKey as
// DB so collision behavior matches production.
type Mem struct {
	mu   sync.RWMutex
	data map[uint32]record.Record
}

// NewMem returns an empty in-memory index.
func NewMem() *Mem {
	return &Mem{data: make(map[uint32]record.Record)}
}

func (m *Mem) Put(key string, r record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[IndexKey(key)] = r
	return nil
}

func (m *Mem) Get(key string) (record.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[IndexKey(key)]
	return r, ok, nil
}

func (m *Mem) GetOrDefault(key string) (record.Record, error) {
	r, ok, _ := m.Get(key)
	if !ok {
		return record.Default(), nil
	}
	return r, nil
}

var _ Index = (*Mem)(nil)
