package ride

import "sync"

// Registry holds per-rider sessions keyed by session id, created on
// demand. Two sessions share the record store and can still race on
// book/cancel; that is an accepted limitation of the design.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  func(id string) *Session
}

func NewRegistry(factory func(id string) *Session) *Registry {
	return &Registry{sessions: make(map[string]*Session), factory: factory}
}

func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s = r.factory(id)
	r.sessions[id] = s
	return s
}

// FindByRoom locates the session whose chat simulator currently owns the
// given room, if any.
func (r *Registry) FindByRoom(room string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.Chat() != nil && s.Chat().Room() == room {
			return s, true
		}
	}
	return nil, false
}
