package sink

import (
	"context"
	"slices"
	"sync"

	"github.com/riadafridishibly/imgdedup/engine"
)

// Memory keeps every stored entry in order. Useful in tests and for callers
// that post-process results themselves.
type Memory struct {
	mu            sync.Mutex
	entries       []engine.Entry
	batches       int
	finalizeCalls int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) StoreOne(ctx context.Context, path, hash string, meta engine.Metadata) error {
	return m.StoreBatch(ctx, []engine.Entry{{Path: path, Hash: hash, Metadata: meta}})
}

func (m *Memory) StoreBatch(_ context.Context, entries []engine.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	m.batches++
	return nil
}

func (m *Memory) Finalize(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeCalls++
	return nil
}

// Entries returns a copy of what has been stored so far.
func (m *Memory) Entries() []engine.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

func (m *Memory) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

func (m *Memory) Finalized() bool {
	return m.FinalizeCalls() > 0
}

func (m *Memory) FinalizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalizeCalls
}
