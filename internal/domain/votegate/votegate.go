// Package votegate tracks which recipes each browse session has rated.
// Flags live in memory only: a restart or a new session starts clean.
package votegate

import (
	"context"
	"sync"
	"sync/atomic"
)

// node is one session in the open-order list.
type node struct {
	sessionID string
	voted     map[int]struct{}
	prev      *node
	next      *node
}

func (n *node) reset() {
	n.sessionID = ""
	n.voted = nil
	n.prev = nil
	n.next = nil
}

// Gate holds the per-session vote flags.
// Bounded mode keeps sessions in a doubly linked list (head = newest) and
// evicts from the tail when full. Unbounded mode never evicts.
type Gate struct {
	mu          sync.Mutex
	sessions    map[string]*node
	head        *node
	tail        *node
	maxSessions int
	flags       atomic.Int64
	nodePool    sync.Pool
	onEvict     func(sessionID string)
}

// New creates an empty gate.
func New(opts ...Option) *Gate {
	g := &Gate{
		maxSessions: 10000,
		sessions:    make(map[string]*node),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return g
}

// Open registers a session. Opening a known session is a no-op.
func (g *Gate) Open(_ context.Context, sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open(sessionID)
}

// SeenAndRecord atomically reports whether the session already voted for
// recipeID and records the vote if it had not. An unknown session is opened.
func (g *Gate) SeenAndRecord(_ context.Context, sessionID string, recipeID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.open(sessionID)
	if _, ok := n.voted[recipeID]; ok {
		return true
	}
	n.voted[recipeID] = struct{}{}
	g.flags.Add(1)
	return false
}

// Record marks recipeID as rated by the session. Sessions that were never
// opened, or were already forgotten or evicted, are ignored.
func (g *Gate) Record(_ context.Context, sessionID string, recipeID int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.sessions[sessionID]
	if !ok {
		return
	}
	if _, voted := n.voted[recipeID]; voted {
		return
	}
	n.voted[recipeID] = struct{}{}
	g.flags.Add(1)
}

// HasVoted reports whether the session already rated recipeID.
func (g *Gate) HasVoted(_ context.Context, sessionID string, recipeID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.sessions[sessionID]
	if !ok {
		return false
	}
	_, voted := n.voted[recipeID]
	return voted
}

// Forget drops every flag of the session.
func (g *Gate) Forget(_ context.Context, sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n, ok := g.sessions[sessionID]; ok {
		g.remove(n)
	}
}

// Size returns the number of vote flags held.
func (g *Gate) Size() int64 {
	return g.flags.Load()
}

// Sessions returns the number of sessions tracked.
func (g *Gate) Sessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// open returns the node for sessionID, creating it at the head.
// Must be called with g.mu held.
func (g *Gate) open(sessionID string) *node {
	if n, ok := g.sessions[sessionID]; ok {
		return n
	}
	if g.maxSessions > 0 {
		for len(g.sessions) >= g.maxSessions && g.tail != nil {
			evicted := g.tail.sessionID
			g.remove(g.tail)
			if g.onEvict != nil {
				g.onEvict(evicted)
			}
		}
	}

	n := g.nodePool.Get().(*node)
	n.sessionID = sessionID
	n.voted = make(map[int]struct{})
	n.next = g.head
	if g.head != nil {
		g.head.prev = n
	}
	g.head = n
	if g.tail == nil {
		g.tail = n
	}
	g.sessions[sessionID] = n
	return n
}

// remove unlinks n and returns it to the pool. Must be called with g.mu held.
func (g *Gate) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		g.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		g.tail = n.prev
	}
	delete(g.sessions, n.sessionID)
	g.flags.Add(-int64(len(n.voted)))
	n.reset()
	g.nodePool.Put(n)
}
