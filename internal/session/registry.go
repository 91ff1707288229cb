package session

import (
	"errors"
	"sync"
)

// ErrDuplicateSession is returned when a session id is already live. The
// connection layer must never attach two connections to one id.
var ErrDuplicateSession = errors.New("duplicate session")

// Registry is the process-wide map of live sessions. It is the only
// structure touched by more than one session's task; everything inside a
// Session belongs to that session's run loop alone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		deps:     deps,
	}
}

// Create registers a new session and starts its run loop.
func (r *Registry) Create(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return nil, ErrDuplicateSession
	}
	s := newSession(id, r.deps)
	r.sessions[id] = s
	go s.run()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove detaches and closes a session. Idempotent; a no-op for unknown ids.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
