package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry keeps one Session per client. Sessions share the provider, and
// through it the process-wide model and geocode cache.
type Registry struct {
	provider AnnotatorProvider
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
}

func NewRegistry(provider AnnotatorProvider) *Registry {
	return &Registry{
		provider: provider,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (r *Registry) Create() *Session {
	session := NewSession(r.provider)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return session
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete ends a session and discards its records.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Reset()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
