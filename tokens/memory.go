package tokens

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps tokens for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Kind]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Kind]string)}
}

func (m *MemoryStore) Get(_ context.Context, kind Kind) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[kind]
	return v, ok
}

func (m *MemoryStore) Set(_ context.Context, kind Kind, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, kind)
		return
	}
	m.values[kind] = value
}

func (m *MemoryStore) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[Kind]string)
}

var _ Factory = (*MemoryFactory)(nil)

// MemoryFactory hands out one MemoryStore per browser session.
type MemoryFactory struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{stores: make(map[string]*MemoryStore)}
}

func (f *MemoryFactory) Open(sessionID string) Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	store, ok := f.stores[sessionID]
	if !ok {
		store = NewMemoryStore()
		f.stores[sessionID] = store
	}
	return store
}

func (f *MemoryFactory) Forget(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stores, sessionID)
}
