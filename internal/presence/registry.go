// Package presence tracks which administrators currently hold a live
// realtime connection. The table is process-local on purpose: a restart
// drops it and administrators re-announce when their client reconnects.
package presence

import (
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Session is one live connection able to receive pushed notifications.
// The websocket layer adapts its connections to this; tests use fakes.
type Session interface {
	// ID distinguishes connections so a stale disconnect cannot evict a
	// newer session for the same administrator.
	ID() string
	// Push writes one notification to the connection.
	Push(notification domain.Notification) error
}

// Registry maps administrator usernames to their current session. At most
// one session per administrator; last connected wins.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// MarkOnline records admin as reachable through session, silently
// superseding any previous session. Idempotent.
func (r *Registry) MarkOnline(admin string, session Session) {
	if admin == "" || session == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[admin] = session
}

// RemoveIfCurrent deletes the entry for admin only when the stored
// session still carries sessionID. Out-of-order disconnects are no-ops.
func (r *Registry) RemoveIfCurrent(admin, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[admin]
	if !ok || current.ID() != sessionID {
		return false
	}
	delete(r.sessions, admin)
	return true
}

// RemoveSession drops whichever administrator the session belongs to.
// Used when a connection closes without telling us who it was.
func (r *Registry) RemoveSession(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for admin, session := range r.sessions {
		if session.ID() == sessionID {
			delete(r.sessions, admin)
			return admin, true
		}
	}
	return "", false
}

// Lookup returns the live session for admin, if any.
func (r *Registry) Lookup(admin string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[admin]
	return session, ok
}

// Online lists currently connected administrators, sorted for stable
// output.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admins := make([]string, 0, len(r.sessions))
	for admin := range r.sessions {
		admins = append(admins, admin)
	}
	sort.Strings(admins)
	return admins
}
