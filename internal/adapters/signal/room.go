package signal

import (
	"fmt"

	"github.com/dkeye/canvas/internal/app/orch"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type createRoomPayload struct {
	RoomID     domain.RoomID   `json:"roomId"`
	Name       domain.RoomName `json:"name"`
	IsPrivate  bool            `json:"isPrivate"`
	IsPersonal bool            `json:"isPersonal"`
}

type invitePayload struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.ConnID `json:"userId"`
}

var errMissingRoomID = fmt.Errorf("%w: roomId is required", domain.ErrInvalidPayload)

// roomRequest decodes a {roomId} payload, acking a failure when it is unusable.
func (ctl *SignalWSController) roomRequest(c *WsSignalConn, env core.Envelope) (domain.RoomID, bool) {
	p, err := decodeData[roomPayload](env)
	if err == nil && p.RoomID == "" {
		err = errMissingRoomID
	}
	if err != nil {
		ctl.ack(c, env.ID, orch.Fail(err))
		return "", false
	}
	return p.RoomID, true
}

// limited acks rate_limited once sid has spent its room command budget.
// createRoom and inviteToRoom share the budget since both grow room state.
func (ctl *SignalWSController) limited(sid domain.ConnID, c *WsSignalConn, env core.Envelope) bool {
	if ctl.limiter == nil || ctl.limiter.Allow(sid) {
		return false
	}
	log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("rate limited")
	ctl.ack(c, env.ID, orch.Fail(domain.ErrRateLimited))
	return true
}

func (ctl *SignalWSController) handleCreateRoom(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	if ctl.limited(sid, c, env) {
		return
	}
	p, err := decodeData[createRoomPayload](env)
	if err != nil {
		ctl.ack(c, env.ID, orch.Fail(err))
		return
	}
	room, err := ctl.Orch.CreateRoom(sid, p.RoomID, p.Name, p.IsPrivate, p.IsPersonal)
	log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("createRoom")
	ctl.ack(c, env.ID, orch.ResultOf(room, err))
}

func (ctl *SignalWSController) handleInvite(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	if ctl.limited(sid, c, env) {
		return
	}
	p, err := decodeData[invitePayload](env)
	if err == nil && (p.RoomID == "" || p.UserID == "") {
		err = fmt.Errorf("%w: roomId and userId are required", domain.ErrInvalidPayload)
	}
	if err != nil {
		ctl.ack(c, env.ID, orch.Fail(err))
		return
	}
	_, err = ctl.Orch.InviteToRoom(sid, p.RoomID, p.UserID)
	log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Str("target", string(p.UserID)).Msg("inviteToRoom")
	if err != nil {
		ctl.ack(c, env.ID, orch.Fail(err))
		return
	}
	ctl.ack(c, env.ID, orch.Ok(nil))
}

func (ctl *SignalWSController) handleJoin(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	id, ok := ctl.roomRequest(c, env)
	if !ok {
		return
	}
	room, err := ctl.Orch.JoinRoom(sid, id)
	log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(id)).Msg("joinRoom")
	ctl.ack(c, env.ID, orch.ResultOf(room, err))
}

func (ctl *SignalWSController) handleLeave(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	id, ok := ctl.roomRequest(c, env)
	if !ok {
		return
	}
	ctl.Orch.LeaveRoom(sid, id)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(id)).Msg("leaveRoom")
	ctl.ack(c, env.ID, orch.Ok(nil))
}

func (ctl *SignalWSController) handleDelete(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	id, ok := ctl.roomRequest(c, env)
	if !ok {
		return
	}
	if err := ctl.Orch.DeleteRoom(sid, id); err != nil {
		ctl.ack(c, env.ID, orch.Fail(err))
		return
	}
	ctl.ack(c, env.ID, orch.Ok(nil))
}

func (ctl *SignalWSController) handleRoomList(c *WsSignalConn, env core.Envelope) {
	ctl.ack(c, env.ID, ctl.Orch.ListRooms())
}
