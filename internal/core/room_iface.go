package core

import "github.com/dkeye/PrivChat/internal/domain"

// RoomInfo is the public listing entry of a room; it never carries the token.
type RoomInfo struct {
	Name         domain.RoomName `json:"name"`
	MemberCount  int             `json:"member_count"`
	PendingCount int             `json:"pending_count"`
}
