package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

// Orchestrator applies client intents to the room directory and the delivery
// tracker and turns the outcomes into relay events. Every emission for a room
// happens inside the Directory callback, under that room's lock.
type Orchestrator struct {
	Rooms   *core.Directory
	Tracker *core.Tracker
	Relay   core.Relay
}

func New(rooms *core.Directory, tracker *core.Tracker, relay core.Relay) *Orchestrator {
	return &Orchestrator{Rooms: rooms, Tracker: tracker, Relay: relay}
}

func (o *Orchestrator) broadcastUsers(r *core.Room) {
	o.Relay.Broadcast(r.Name(), "", core.RoomUsers{
		Type:  core.EventRoomUsers,
		Room:  r.Name(),
		Users: r.Usernames(),
	})
}

// evict takes a replaced session out of the room's traffic and drops its
// connection.
func (o *Orchestrator) evict(room domain.RoomName, sid core.SessionID, reason string) {
	o.Relay.SendTo(sid, core.ForcedDisconnect{
		Type:   core.EventForcedDisconnect,
		Room:   room,
		Reason: reason,
	})
	o.Relay.LeaveGroup(sid, room)
	o.Relay.Disconnect(sid)
	log.Info().Str("module", "orch").Str("room", string(room)).Str("sid", string(sid)).Str("reason", reason).Msg("session evicted")
}

// member resolves the caller's username in the room.
func member(r *core.Room, sid core.SessionID) (string, error) {
	username, ok := r.UsernameOf(sid)
	if !ok {
		return "", domain.ErrNotMember
	}
	return username, nil
}
