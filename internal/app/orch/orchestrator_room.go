package orch

import (
	"github.com/dkeye/canvas/internal/app"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

// moveTo must be called with o.mu held. It leaves the connection's previous
// room, if any, and makes room its current one.
func (o *Orchestrator) moveTo(sid domain.ConnID, room domain.RoomID) {
	if from, ok := o.Registry.RoomOf(sid); ok && from != room {
		if left, ok := o.Rooms.Leave(from, sid); ok {
			o.broadcastRoomMembers(left)
		}
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left previous room")
	}
	o.Registry.UpdateRoom(sid, room)
}

func (o *Orchestrator) CreateRoom(sid domain.ConnID, id domain.RoomID, name domain.RoomName, private, personal bool) (domain.Room, error) {
	o.lock()
	defer o.unlock()
	room, err := o.Rooms.Create(id, name, sid, private, personal)
	if err != nil {
		return domain.Room{}, err
	}
	o.moveTo(sid, id)
	o.replay(sid)
	o.broadcastRoomList()
	return room, nil
}

// InviteToRoom records the invitation and notifies target if it is connected.
func (o *Orchestrator) InviteToRoom(sid domain.ConnID, id domain.RoomID, target domain.ConnID) (domain.Room, error) {
	o.lock()
	defer o.unlock()
	room, err := o.Rooms.Invite(id, sid, target)
	if err != nil {
		return domain.Room{}, err
	}
	o.emitTo(target, core.TypeInvited, Invitation{RoomID: id, Room: room})
	return room, nil
}

// Invitation is the payload of invitedToRoom.
type Invitation struct {
	RoomID domain.RoomID `json:"roomId"`
	Room   domain.Room   `json:"room"`
}

func (o *Orchestrator) JoinRoom(sid domain.ConnID, id domain.RoomID) (domain.Room, error) {
	o.lock()
	defer o.unlock()
	room, err := o.Rooms.Join(id, sid)
	if err != nil {
		return domain.Room{}, err
	}
	o.moveTo(sid, id)
	o.replay(sid)
	o.broadcastRoomMembers(room)
	return room, nil
}

// LeaveRoom never fails; leaving an unknown room is a no-op.
func (o *Orchestrator) LeaveRoom(sid domain.ConnID, id domain.RoomID) {
	o.lock()
	defer o.unlock()
	room, ok := o.Rooms.Leave(id, sid)
	if !ok {
		return
	}
	if cur, ok := o.Registry.RoomOf(sid); ok && cur == id {
		o.Registry.RemoveRoom(sid)
		o.replay(sid)
	}
	o.broadcastRoomMembers(room)
}

// DeleteRoom evicts every member from the room scope, removes the room and
// its canvas, then republishes the room list to everyone.
func (o *Orchestrator) DeleteRoom(sid domain.ConnID, id domain.RoomID) error {
	o.lock()
	defer o.unlock()
	room, err := o.Rooms.Delete(id, sid)
	if err != nil {
		return err
	}
	for _, sess := range o.Registry.InRoom(id) {
		o.Registry.RemoveRoom(sess.Meta().ID)
		o.replay(sess.Meta().ID)
	}
	o.History.Drop(app.RoomScope(id))
	o.broadcastRoomList()
	log.Info().Str("module", "orch").Str("room", string(id)).Int("members", len(room.Members)).Msg("room evicted")
	return nil
}

func (o *Orchestrator) ListRooms() map[domain.RoomID]domain.Room {
	return o.Rooms.List()
}
