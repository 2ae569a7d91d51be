package domain

import (
	"sync"

	"github.com/google/uuid"
)

// Member is the group-side view of a connected session. Push must never
// block: a slow or closed peer is the member's own problem, not the group's.
type Member interface {
	ID() uuid.UUID
	Username() string
	Push(line string)
}

// Group is a named topic owning a membership set and an append-only message
// history. Every mutation and every snapshot taken for broadcast or backfill
// runs under the same mutex, so readers never observe a half-applied join,
// leave or post.
type Group struct {
	ID   int
	Name string

	mu       sync.RWMutex
	members  map[uuid.UUID]Member
	messages []Message
}

func NewGroup(id int, name string) *Group {
	return &Group{
		ID:      id,
		Name:    name,
		members: make(map[uuid.UUID]Member),
	}
}

// Join adds m to the group and, atomically with the insertion, snapshots the
// usernames of the other members and the last backfill messages, then pushes
// joinedLine to everyone else. Returns ok=false when m is already a member,
// in which case nothing changes.
func (g *Group) Join(m Member, backfill int, joinedLine string) (names []string, recent []Message, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.members[m.ID()]; exists {
		return nil, nil, false
	}
	g.members[m.ID()] = m

	names = g.usernamesLocked(m.ID())
	recent = g.recentLocked(backfill)
	for id, other := range g.members {
		if id != m.ID() {
			other.Push(joinedLine)
		}
	}
	return names, recent, true
}

// Leave removes the member and pushes leftLine to the remaining members.
// Removing a non-member is a no-op and returns false.
func (g *Group) Leave(id uuid.UUID, leftLine string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.members[id]; !exists {
		return false
	}
	delete(g.members, id)
	for _, other := range g.members {
		other.Push(leftLine)
	}
	return true
}

// Post appends msg to the history and pushes line to every member except the
// sender. Append and fan-out share one critical section: the history order
// is the broadcast order.
func (g *Group) Post(msg Message, line string, sender uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.messages = append(g.messages, msg)
	for id, other := range g.members {
		if id != sender {
			other.Push(line)
		}
	}
}

// Broadcast pushes line to every current member except the excluded one.
func (g *Group) Broadcast(line string, except uuid.UUID) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, other := range g.members {
		if id != except {
			other.Push(line)
		}
	}
}

func (g *Group) HasMember(id uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.members[id]
	return exists
}

// Usernames returns the names of the current members, excluding the given
// session id.
func (g *Group) Usernames(except uuid.UUID) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.usernamesLocked(except)
}

// Recent returns the last n messages in post order, fewer if the history is
// shorter.
func (g *Group) Recent(n int) []Message {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.recentLocked(n)
}

// MessageByID scans the group's history for the given message id.
func (g *Group) MessageByID(id int) (Message, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, msg := range g.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return Message{}, false
}

func (g *Group) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

func (g *Group) MessageCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.messages)
}

func (g *Group) usernamesLocked(except uuid.UUID) []string {
	names := make([]string, 0, len(g.members))
	for id, m := range g.members {
		if id != except {
			names = append(names, m.Username())
		}
	}
	return names
}

func (g *Group) recentLocked(n int) []Message {
	if n <= 0 {
		return nil
	}
	start := len(g.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(g.messages)-start)
	copy(out, g.messages[start:])
	return out
}
