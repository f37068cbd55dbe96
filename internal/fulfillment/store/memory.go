package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	locks    map[string]*keyLock
}

// keyLock is dropped from MemoryStore.locks once no caller holds or waits on it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		locks:    make(map[string]*keyLock),
	}
}

// Get returns a copy, so callers must Save to publish changes.
func (m *MemoryStore) Get(_ context.Context, requestID string) (*fulfillment.Session, error) {
	m.mu.Lock()
	raw, ok := m.sessions[requestID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var s fulfillment.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *fulfillment.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.RequestID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, requestID string) error {
	m.mu.Lock()
	delete(m.sessions, requestID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Lock(_ context.Context, requestID string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[requestID]
	if !ok {
		l = &keyLock{}
		m.locks[requestID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, requestID)
		}
		m.mu.Unlock()
	}, nil
}
