package session

import "sync"

// Registry tracks the live mapping between sessions and authenticated
// users. Invariant: a user_id maps to at most one live session; binding a
// user to a new session evicts any prior binding for that user.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
	byUser   map[string]uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uint64]*Session),
		byUser:   make(map[string]uint64),
	}
}

// Add registers a newly created session, unauthenticated.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// BindUser associates userID with sessionID, evicting any session
// previously bound to that user. Returns the evicted session, if any, so
// the caller can disconnect it.
func (r *Registry) BindUser(userID string, sessionID uint64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted *Session
	if prevID, ok := r.byUser[userID]; ok && prevID != sessionID {
		evicted = r.sessions[prevID]
	}
	r.byUser[userID] = sessionID
	return evicted
}

// Get returns the session for sessionID, if it's still registered.
func (r *Registry) Get(sessionID uint64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// GetByUser returns the live session currently bound to userID, if any.
func (r *Registry) GetByUser(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Remove drops sessionID from the registry entirely, releasing its user
// binding if it had one.
func (r *Registry) Remove(sessionID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	if uc := s.UserContext(); uc != nil {
		if bound, ok := r.byUser[uc.UserID]; ok && bound == sessionID {
			delete(r.byUser, uc.UserID)
		}
	}
}

// Snapshot returns every currently-registered session, for the server's
// tick loop to iterate.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
