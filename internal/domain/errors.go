package domain

import "errors"

var (
	ErrDuplicateRoom  = errors.New("room already exists")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInvited     = errors.New("not invited")
	ErrNotOwner       = errors.New("only the owner may do this")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrRateLimited    = errors.New("rate limited")
)
