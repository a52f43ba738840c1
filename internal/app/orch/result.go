package orch

import (
	"errors"

	"github.com/dkeye/canvas/internal/domain"
)

// Result is the acknowledgement returned for every room command.
type Result struct {
	Success bool         `json:"success"`
	Room    *domain.Room `json:"room,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

func Ok(room *domain.Room) Result {
	return Result{Success: true, Room: room}
}

func Fail(err error) Result {
	return Result{Error: ErrorCode(err), Message: err.Error()}
}

// ResultOf folds a room command outcome into its acknowledgement.
func ResultOf(room domain.Room, err error) Result {
	if err != nil {
		return Fail(err)
	}
	return Ok(&room)
}

// ErrorCode maps a domain error to its stable wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateRoom):
		return "duplicate_room"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrNotInvited):
		return "not_invited"
	case errors.Is(err, domain.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "internal"
	}
}
