package session

import (
	"sync"

	"github.com/jung602/roro/internal/directions"
)

// Store is the in-memory registry of active editing sessions.
type Store struct {
	provider directions.Provider
	uploader Uploader

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(provider directions.Provider, uploader Uploader) *Store {
	return &Store{
		provider: provider,
		uploader: uploader,
		sessions: map[string]*Session{},
	}
}

func (st *Store) Create() *Session {
	s := New(st.provider, st.uploader)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
