package game

import "sync"

// Registry maps a channel to its single live session. All creation and
// removal is serialized through one mutex so concurrent join/start/end
// paths observe a consistent view.
type Registry struct {
	mu       sync.Mutex
	sessions map[ChannelRef]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[ChannelRef]*Session)}
}

// Get returns the session for ref, or nil if none exists.
func (r *Registry) Get(ref ChannelRef) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[ref]
}

// Create registers a fresh session for ref with hostID as host. Fails
// with ErrLobbyExists if one is already live there.
func (r *Registry) Create(ref ChannelRef, hostID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[ref]; ok {
		return nil, ErrLobbyExists
	}
	s := newSession(ref, hostID)
	r.sessions[ref] = s
	return s, nil
}

// Remove drops the session for ref and reports whether this call was
// the one that removed it. Teardown paths race (explicit end, natural
// completion, host leaving); only the winner proceeds with cleanup.
func (r *Registry) Remove(ref ChannelRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[ref]; !ok {
		return false
	}
	delete(r.sessions, ref)
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
