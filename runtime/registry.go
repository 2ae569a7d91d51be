// Package runtime owns the live side of the board: the registry of
// connected sessions, the per-connection protocol loop, and the accept loop.
package runtime

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"bboard/domain"
	"bboard/errors"
)

// Registry holds the live session set and the fixed group set. Groups are
// created once at startup and live until the process exits; sessions come
// and go with their connections.
//
// The registry mutex serializes logins and session lifecycle so the
// username check-then-set is atomic: two concurrent LOGINs with the same
// name can never both win.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	groups    []*domain.Group
	groupByID map[int]*domain.Group

	nextMessageID atomic.Int64
}

func NewRegistry(groups []*domain.Group) *Registry {
	byID := make(map[int]*domain.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return &Registry{
		sessions:  make(map[uuid.UUID]*Session),
		groups:    groups,
		groupByID: byID,
	}
}

// Groups returns the configured groups in their startup order.
func (r *Registry) Groups() []*domain.Group {
	return r.groups
}

// GroupByIdentifier resolves an exact numeric id or a case-insensitive name.
func (r *Registry) GroupByIdentifier(token string) (*domain.Group, bool) {
	if id, err := strconv.Atoi(token); err == nil {
		g, ok := r.groupByID[id]
		return g, ok
	}
	for _, g := range r.groups {
		if strings.EqualFold(g.Name, token) {
			return g, true
		}
	}
	return nil, false
}

// NextMessageID allocates a monotonically increasing, process-lifetime
// message id starting at 1.
func (r *Registry) NextMessageID() int {
	return int(r.nextMessageID.Add(1))
}

// Attach adds a freshly accepted session to the live set.
func (r *Registry) Attach(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

// Login claims name for s. The uniqueness check and the assignment happen
// under one lock; the comparison is case-insensitive.
func (r *Registry) Login(s *Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Username() != "" {
		return errors.ErrAlreadyLoggedIn
	}
	for _, other := range r.sessions {
		if strings.EqualFold(other.Username(), name) {
			return errors.ErrUsernameTaken
		}
	}
	s.setUsername(name)
	return nil
}

// UsernameTaken reports whether any live session holds name,
// case-insensitively.
func (r *Registry) UsernameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if strings.EqualFold(s.Username(), name) {
			return true
		}
	}
	return false
}

// Drop removes the session from the live set, freeing its username for
// reuse. Dropping an unknown session is a no-op.
func (r *Registry) Drop(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.id)
}

// FindMessage scans every group's history for the id. Linear, which is fine
// at this scale; an id index would be the first thing to add under load.
func (r *Registry) FindMessage(id int) (domain.Message, int, bool) {
	for _, g := range r.groups {
		if msg, ok := g.MessageByID(id); ok {
			return msg, g.ID, true
		}
	}
	return domain.Message{}, 0, false
}

func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll force-closes every live connection. Each session then tears
// itself down from its own goroutine, exactly as on a transport error.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		s.CloseConn()
	}
}
