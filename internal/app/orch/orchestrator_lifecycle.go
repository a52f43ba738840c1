package orch

import (
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect registers a new connection, announces the presence count to all,
// and replays the global canvas to the newcomer.
func (o *Orchestrator) Connect(clientToken string, signal core.SignalConnection) domain.ConnID {
	o.lock()
	defer o.unlock()
	sess := o.Registry.Register(clientToken, signal)
	sid := sess.Meta().ID

	o.broadcastUserCount()
	o.emit([]core.Session{sess}, "", core.TypeCanvasHistory, o.History.Snapshot(o.scopeOf(sid)))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("users", o.Registry.Count()).Msg("connected")
	return sid
}

// Disconnect tears the connection down. With CleanupOnDisconnect off the
// identity stays listed in its rooms.
func (o *Orchestrator) Disconnect(sid domain.ConnID) {
	o.lock()
	defer o.unlock()
	if !o.Registry.Exists(sid) {
		return
	}
	if o.Options.CleanupOnDisconnect {
		o.Registry.RemoveRoom(sid)
		_, _ = o.Registry.Unregister(sid)
		for _, room := range o.Rooms.Evict(sid) {
			o.broadcastRoomMembers(room)
		}
	} else {
		_, _ = o.Registry.Unregister(sid)
	}
	o.broadcastUserCount()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("users", o.Registry.Count()).Msg("disconnected")
}

// WhoAmI describes a connection to itself.
type WhoAmI struct {
	ID   domain.ConnID `json:"id"`
	Room domain.RoomID `json:"room,omitempty"`
}

func (o *Orchestrator) WhoAmI(sid domain.ConnID) WhoAmI {
	o.lock()
	defer o.unlock()
	room, _ := o.Registry.RoomOf(sid)
	return WhoAmI{ID: sid, Room: room}
}
