package orch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

func joinStatus(room domain.RoomName, status, username string, owner bool) core.JoinStatus {
	return core.JoinStatus{
		Type:     core.EventJoinStatus,
		Room:     room,
		Status:   status,
		Username: username,
		Owner:    owner,
	}
}

// statusOf maps a repeated join back onto the protocol status.
func statusOf(adm core.Admission) string {
	switch {
	case adm.Status == domain.StatusPending:
		return core.JoinPending
	case adm.Role == domain.RoleOwner:
		return core.JoinOwner
	case adm.Status == domain.StatusRestored:
		return core.JoinRestored
	default:
		return core.JoinApproved
	}
}

func (o *Orchestrator) Join(sid core.SessionID, room domain.RoomName, username string, token domain.Token) error {
	req := core.JoinRequest{Room: room, Username: username, Token: token, SID: sid}
	_, err := o.Rooms.Join(req, func(r *core.Room, adm core.Admission) {
		owner := adm.Role == domain.RoleOwner
		switch {
		case adm.Rejoined:
			o.Relay.SendTo(sid, joinStatus(room, statusOf(adm), adm.Username, owner))

		case adm.Created:
			o.Relay.JoinGroup(sid, room)
			o.Relay.SendTo(sid, joinStatus(room, core.JoinOwner, adm.Username, true))
			o.broadcastUsers(r)

		case adm.Status == domain.StatusRestored:
			o.evict(room, adm.Replaced, core.ReasonTakenOver)
			o.Relay.JoinGroup(sid, room)
			o.Relay.SendTo(sid, joinStatus(room, core.JoinRestored, adm.Username, owner))
			o.broadcastUsers(r)

		case adm.Status == domain.StatusPending:
			o.Relay.SendTo(adm.Owner, core.JoinRequest{
				Type:       core.EventJoinRequest,
				Room:       room,
				Username:   adm.Username,
				Connection: sid,
			})
			o.Relay.SendTo(sid, joinStatus(room, core.JoinPending, adm.Username, false))
		}
	})
	if err != nil {
		return fmt.Errorf("join %q: %w", room, err)
	}
	return nil
}

func (o *Orchestrator) Approve(by core.SessionID, room domain.RoomName, requester core.SessionID) error {
	err := o.Rooms.Approve(room, by, requester, func(r *core.Room, ap core.Approval) {
		if ap.Replaced != "" {
			o.evict(room, ap.Replaced, core.ReasonTakenOver)
		}
		o.Relay.JoinGroup(requester, room)
		o.Relay.SendTo(requester, joinStatus(room, core.JoinApproved, ap.Username, false))
		o.broadcastUsers(r)
	})
	if err != nil {
		return fmt.Errorf("approve in %q: %w", room, err)
	}
	return nil
}

func (o *Orchestrator) Reject(by core.SessionID, room domain.RoomName, requester core.SessionID) error {
	err := o.Rooms.Reject(room, by, requester, func(_ *core.Room, username string) {
		o.Relay.SendTo(requester, joinStatus(room, core.JoinRejected, username, false))
		o.Relay.SendTo(requester, core.ForcedDisconnect{
			Type:   core.EventForcedDisconnect,
			Room:   room,
			Reason: core.ReasonRejected,
		})
		o.Relay.Disconnect(requester)
	})
	if err != nil {
		return fmt.Errorf("reject in %q: %w", room, err)
	}
	return nil
}

// Leave takes the session out of one room and keeps its connection.
func (o *Orchestrator) Leave(sid core.SessionID, room domain.RoomName) error {
	if err := o.Rooms.LeaveRoom(room, sid, o.departed(sid)); err != nil {
		return fmt.Errorf("leave %q: %w", room, err)
	}
	return nil
}

// OnDisconnect cleans up every room the session touched.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Rooms.Leave(sid, o.departed(sid))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("session cleaned up")
}

func (o *Orchestrator) departed(sid core.SessionID) func(*core.Room, core.Departure) {
	return func(r *core.Room, dep core.Departure) {
		room := r.Name()
		o.Relay.LeaveGroup(sid, room)
		if dep.Closed {
			o.Tracker.DropRoom(room)
			o.Relay.Broadcast(room, sid, core.RoomClosed{
				Type:   core.EventRoomClosed,
				Room:   room,
				Reason: core.ReasonOwnerLeft,
			})
			for _, other := range dep.Remaining {
				o.Relay.LeaveGroup(other, room)
			}
			return
		}
		if dep.WasMember {
			o.broadcastUsers(r)
		}
	}
}
