package session

import (
	"sync"

	"github.com/google/uuid"

	"studybuddy-backend/internal/models"
)

// StorePublisher receives transition snapshots tagged with the session they
// belong to. The websocket layer fans these out to connected clients.
type StorePublisher func(id uuid.UUID, state models.SessionState)

// Store keeps live sessions in memory. Nothing is persisted: a session exists
// between "questions ready" and "player went back to the upload screen".
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	publish  StorePublisher
}

func NewStore(publish StorePublisher) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		publish:  publish,
	}
}

func (st *Store) Create(questions []models.Question) *Session {
	var s *Session
	s = New(questions, func(state models.SessionState) {
		if st.publish != nil {
			st.publish(s.ID(), state)
		}
	})

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()

	return s
}

func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete tears the session down (goBack). Pending animation timers are
// cancelled before the session is dropped.
func (st *Store) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close tears down every live session. Called on server shutdown.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[uuid.UUID]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
