package core

import (
	"encoding/json"
	"fmt"
)

// Inbound event types.
const (
	TypeDrawing     = "drawing"
	TypeClearCanvas = "clearCanvas"
	TypeCreateRoom  = "createRoom"
	TypeInvite      = "inviteToRoom"
	TypeJoinRoom    = "joinRoom"
	TypeLeaveRoom   = "leaveRoom"
	TypeDeleteRoom  = "deleteRoom"
	TypeGetRoomList = "getRoomList"
	TypePing        = "ping"
	TypeWhoAmI      = "whoami"
)

// Outbound-only event types.
const (
	TypeCanvasHistory = "canvasHistory"
	TypeUserCount     = "userCount"
	TypeRoomList      = "roomList"
	TypeRoomMembers   = "roomMembers"
	TypeInvited       = "invitedToRoom"
	TypeAck           = "ack"
	TypePong          = "pong"
	TypeError         = "error"
)

// Envelope is the single framing used in both directions.
// ID is echoed back on the ack of a request.
type Envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode builds a frame for an outbound event. A nil data omits the field.
func Encode(typ, id string, data any) (Frame, error) {
	env := Envelope{Type: typ, ID: id}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", typ, err)
		}
		env.Data = raw
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return b, nil
}

// Decode parses one inbound frame.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
