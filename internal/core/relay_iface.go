package core

import "github.com/dkeye/PrivChat/internal/domain"

//go:generate mockgen -destination=mocks/relay_mock.go -package=mocks github.com/dkeye/PrivChat/internal/core Relay

// Relay is the pub/sub transport the room state machine talks to.
// Every method is fire-and-forget: it only enqueues and never blocks on a peer.
type Relay interface {
	SendTo(sid SessionID, event any)
	// Broadcast sends to every session in the room group except the given one.
	// An empty except reaches the whole group.
	Broadcast(room domain.RoomName, except SessionID, event any)
	JoinGroup(sid SessionID, room domain.RoomName)
	LeaveGroup(sid SessionID, room domain.RoomName)
	Disconnect(sid SessionID)
}
