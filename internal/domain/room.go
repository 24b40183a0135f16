package domain

import "errors"

type (
	RoomName string
	Token    string
)

var (
	ErrInvalidToken  = errors.New("room token invalid")
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyMember = errors.New("connection already joined this room under another username")
	ErrNotMember     = errors.New("not a room member")
	ErrNotPending    = errors.New("no pending request for connection")
	ErrUnauthorized  = errors.New("unauthorized")
)

type Room struct {
	Name  RoomName
	Token Token
}

func (n RoomName) Validate() error {
	if len(n) == 0 {
		return ErrMissingFields
	}
	if len(n) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}

func (t Token) Validate() error {
	if len(t) == 0 {
		return ErrMissingFields
	}
	if len(t) > MaxTokenLen {
		return ErrTokenTooLong
	}
	return nil
}
