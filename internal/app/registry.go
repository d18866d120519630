package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

// Entry is the registry's record of one live connection: its identity,
// its transport endpoint and the set of rooms it has joined. The room set
// is only ever touched under the registry mutex.
type Entry struct {
	id    core.ConnID
	user  domain.User
	conn  core.SignalConnection
	rooms map[domain.RoomID]struct{}
}

func (e *Entry) ID() core.ConnID   { return e.id }
func (e *Entry) User() domain.User { return e.user }

// TrySend forwards a frame to the entry's transport. Safe to call after
// the entry has been unregistered; a closed connection reports an error.
func (e *Entry) TrySend(f core.Frame) error { return e.conn.TrySend(f) }

// Registry is the process-lifetime collection of live connections.
// A single mutex guards entries and their room sets as one unit, so a
// MembersOf snapshot never races with a concurrent Unregister.
type Registry struct {
	mu      sync.RWMutex
	entries map[core.ConnID]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[core.ConnID]*Entry)}
}

// Register creates an entry with an empty room set. Called only after
// credential verification has succeeded.
func (r *Registry) Register(id core.ConnID, user domain.User, conn core.SignalConnection) *Entry {
	e := &Entry{
		id:    id,
		user:  user,
		conn:  conn,
		rooms: make(map[domain.RoomID]struct{}),
	}
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("user", string(user.ID)).Msg("registered connection")
	return e
}

// Join adds the room to the entry's set. Rejoining is a no-op.
func (r *Registry) Join(e *Entry, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := e.rooms[room]; ok {
		return
	}
	e.rooms[room] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(e.id)).Str("room", string(room)).Msg("joined room")
}

// Leave removes the room from the entry's set. Leaving a room that was
// never joined is a no-op.
func (r *Registry) Leave(e *Entry, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := e.rooms[room]; !ok {
		return
	}
	delete(e.rooms, room)
	log.Info().Str("module", "app.registry").Str("conn", string(e.id)).Str("room", string(room)).Msg("left room")
}

// Unregister removes the entry entirely. Called exactly once per
// connection, on transport close of any cause.
func (r *Registry) Unregister(e *Entry) {
	r.mu.Lock()
	delete(r.entries, e.id)
	e.rooms = make(map[domain.RoomID]struct{})
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("conn", string(e.id)).Msg("unregistered connection")
}

// MembersOf returns every currently registered entry whose room set
// contains room, evaluated at call time.
func (r *Registry) MembersOf(room domain.RoomID) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if _, ok := e.rooms[room]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Rooms reports the entry's current room set. Used by tests and the
// health endpoint; routing goes through MembersOf.
func (r *Registry) Rooms(e *Entry) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(e.rooms))
	for room := range e.rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
