package app

import (
	"sync"

	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.Session
}

// Registry is the session registry: every live connection and the drawing
// room it currently sits in. A connection is in at most one room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]*sessionEntry),
	}
}

// Register allocates a fresh identity for signal and stores the session.
func (r *Registry) Register(clientToken string, signal core.SignalConnection) core.Session {
	meta := domain.Conn{ID: domain.NewConnID(), ClientToken: clientToken}
	sess := core.NewSession(meta, signal)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[meta.ID] = &sessionEntry{Session: sess}
	log.Info().Str("module", "app.registry").Str("sid", string(meta.ID)).Int("total", len(r.sessions)).Msg("registered session")
	return sess
}

// Unregister removes sid. The identity is never handed out again.
func (r *Registry) Unregister(sid domain.ConnID) (core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("total", len(r.sessions)).Msg("unregistered session")
	return e.Session, true
}

func (r *Registry) Exists(sid domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sid]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) GetSession(sid domain.ConnID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(sid domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

func (r *Registry) UpdateRoom(sid domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomID = room
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.RoomID = ""
	}
}

// All returns every live session.
func (r *Registry) All() []core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e.Session)
	}
	return out
}

// InRoom returns the sessions whose current room is room.
// An empty room selects sessions that are in no room.
func (r *Registry) InRoom(room domain.RoomID) []core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.RoomID == room {
			out = append(out, e.Session)
		}
	}
	return out
}
