package service

import (
	"sync"

	"github.com/pingme/pingme-server"
)

// Conn is a live connection handle. The registry never touches the
// transport beyond this surface: a stable id and a single-frame emit.
type Conn interface {
	ID() string
	Emit(event pingme.Event) error
}

type binding struct {
	conn   Conn
	online bool
}

// PresenceRegistry is the process-wide mapping from identity to live
// connection. One binding per identity; a reconnect under the same
// identity silently evicts the previous connection (last-write-wins).
// All operations are total and safe for concurrent use; none of them
// performs I/O while holding the lock.
type PresenceRegistry struct {
	mu       sync.RWMutex
	bindings map[string]*binding
	order    []string // identity insertion order, for deterministic snapshots
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		bindings: make(map[string]*binding),
	}
}

// Register inserts or replaces the binding for an identity. Registering
// an empty identity is a no-op.
func (r *PresenceRegistry) Register(identity string, conn Conn) {
	if identity == "" || conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bindings[identity]; ok {
		b.conn = conn
		return
	}
	r.bindings[identity] = &binding{conn: conn}
	r.order = append(r.order, identity)
}

// MarkOnline sets the online flag for an identity, registering the
// binding first if it was never announced.
func (r *PresenceRegistry) MarkOnline(identity string, conn Conn) {
	if identity == "" || conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bindings[identity]; ok {
		b.conn = conn
		b.online = true
		return
	}
	r.bindings[identity] = &binding{conn: conn, online: true}
	r.order = append(r.order, identity)
}

// Unregister removes whichever binding currently holds this exact
// connection. The lookup is by connection value, not identity, because
// a disconnect only knows its own handle. Unknown connections are a
// no-op. Returns the identity that was unbound, if any.
func (r *PresenceRegistry) Unregister(conn Conn) (string, bool) {
	if conn == nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, b := range r.bindings {
		if b.conn != conn {
			continue
		}
		delete(r.bindings, identity)
		for i, id := range r.order {
			if id == identity {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		return identity, true
	}
	return "", false
}

// Lookup returns the live connection for an identity.
func (r *PresenceRegistry) Lookup(identity string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[identity]
	if !ok {
		return nil, false
	}
	return b.conn, true
}

// Snapshot returns all current bindings in insertion order.
func (r *PresenceRegistry) Snapshot() []pingme.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]pingme.PresenceEntry, 0, len(r.order))
	for _, identity := range r.order {
		entries = append(entries, pingme.PresenceEntry{
			UserID:       identity,
			ConnectionID: r.bindings[identity].conn.ID(),
		})
	}
	return entries
}

// OnlineIdentities returns the identities that went through the
// user_online path, in insertion order.
func (r *PresenceRegistry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.order))
	for _, identity := range r.order {
		if r.bindings[identity].online {
			online = append(online, identity)
		}
	}
	return online
}

// Conns returns every bound connection, deduplicated, in insertion
// order. Broadcast targets are taken from this snapshot so no emit
// happens under the registry lock.
func (r *PresenceRegistry) Conns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.order))
	conns := make([]Conn, 0, len(r.order))
	for _, identity := range r.order {
		c := r.bindings[identity].conn
		if _, dup := seen[c.ID()]; dup {
			continue
		}
		seen[c.ID()] = struct{}{}
		conns = append(conns, c)
	}
	return conns
}
