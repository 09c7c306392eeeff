package cache

import (
	"context"
	"encoding/json"
	"sync"

	"frictionstudy/internal/model"
)

// MemorySessionStore keeps sessions in process. Sessions are stored as JSON
// so callers never share a pointer with the store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	locks    map[string]*sync.Mutex
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]byte),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return ErrSessionExists
	}
	s.sessions[session.ID] = data
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	data, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *MemorySessionStore) Lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	if !l.TryLock() {
		return nil, ErrLocked
	}
	return l.Unlock, nil
}
