package state

import (
	"context"
	"fmt"
	"sync"

	"fairplayServer/game"
)

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	locks    *KeyedMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		locks:    NewKeyedMutex(),
	}
}

func (m *MemorySessionStore) Get(_ context.Context, user string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[user]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", game.ErrSessionNotFound, user)
	}
	return s, nil
}

func (m *MemorySessionStore) GetOrCreate(ctx context.Context, user string, create func() (Session, error)) (Session, bool, error) {
	unlock := m.locks.Lock(user)
	defer unlock()

	if s, err := m.Get(ctx, user); err == nil {
		return s, false, nil
	}

	s, err := create()
	if err != nil {
		return Session{}, false, err
	}
	m.put(user, s)
	return s, true, nil
}

func (m *MemorySessionStore) Replace(_ context.Context, user string, s Session) (*Session, error) {
	unlock := m.locks.Lock(user)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	var previous *Session
	if old, ok := m.sessions[user]; ok {
		previous = &old
	}
	m.sessions[user] = s
	return previous, nil
}

func (m *MemorySessionStore) AtomicUpdate(ctx context.Context, user string, fn UpdateFunc) (Session, error) {
	unlock := m.locks.Lock(user)
	defer unlock()

	current, err := m.Get(ctx, user)
	if err != nil {
		return Session{}, err
	}

	next, err := fn(current)
	if err != nil {
		return Session{}, err
	}
	if err := CheckTransition(current, next); err != nil {
		return Session{}, err
	}

	m.put(user, next)
	return next, nil
}

func (m *MemorySessionStore) put(user string, s Session) {
	m.mu.Lock()
	m.sessions[user] = s
	m.mu.Unlock()
}

var _ SessionStore = (*MemorySessionStore)(nil)
