package repository

import (
	"context"
	"sync"
	"time"

	"github.com/t-hirai03/webmaka/types"
)

type memoryEntry struct {
	data    types.ContactFormData
	expires time.Time
}

// MemorySnapshotStore is a process local SnapshotStore. Expired entries are
// invisible to Get and removed by Sweep.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemorySnapshotStore(ttl time.Duration) *MemorySnapshotStore {
	return &MemorySnapshotStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// SetClock replaces time.Now (tests)
func (m *MemorySnapshotStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemorySnapshotStore) Get(ctx context.Context, sessionID string) (*types.ContactFormData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok || m.now().After(e.expires) {
		return nil, types.ErrNotFound
	}
	data := e.data
	return &data, nil
}

func (m *MemorySnapshotStore) Save(ctx context.Context, sessionID string, data *types.ContactFormData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{data: *data, expires: m.now().Add(m.ttl)}
	return nil
}

// Sweep removes expired snapshots and returns how many were removed
func (m *MemorySnapshotStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

func (m *MemorySnapshotStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
