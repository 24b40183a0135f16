package orch

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

// Send relays an opaque payload to the rest of the room and reports the
// recipients back to the sender.
func (o *Orchestrator) Send(sid core.SessionID, room domain.RoomName, id domain.MessageID, content json.RawMessage) error {
	if len(content) == 0 {
		return fmt.Errorf("send in %q: %w", room, domain.ErrMissingFields)
	}
	err := o.Rooms.With(room, func(r *core.Room) error {
		username, err := member(r, sid)
		if err != nil {
			return err
		}
		rc, err := o.Tracker.RecordSend(room, id, sid, username, r.UsernamesExcept(username))
		if err != nil {
			return err
		}
		o.Relay.Broadcast(room, sid, core.Message{
			Type:       core.EventMessage,
			Room:       room,
			MessageID:  id,
			Content:    content,
			Sender:     username,
			Connection: sid,
		})
		o.Relay.SendTo(sid, core.Delivered{
			Type:        core.EventDelivered,
			Room:        room,
			MessageID:   id,
			DeliveredTo: rc.DeliveredTo,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("send %q in %q: %w", id, room, err)
	}
	return nil
}

// Seen records a read receipt for the caller's username in the room. Only
// the sending session hears about it.
func (o *Orchestrator) Seen(sid core.SessionID, room domain.RoomName, id domain.MessageID) error {
	err := o.Rooms.With(room, func(r *core.Room) error {
		username, err := member(r, sid)
		if err != nil {
			return err
		}
		rc, err := o.Tracker.RecordSeen(room, id, username, r.MemberCount())
		if err != nil {
			return err
		}
		o.Relay.SendTo(rc.Sender, core.Seen{
			Type:      core.EventSeen,
			Room:      room,
			MessageID: id,
			SeenBy:    rc.SeenBy,
			AllSeen:   rc.AllSeen,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("seen %q in %q: %w", id, room, err)
	}
	return nil
}

func (o *Orchestrator) Edit(sid core.SessionID, room domain.RoomName, id domain.MessageID, content json.RawMessage) error {
	if len(content) == 0 {
		return fmt.Errorf("edit in %q: %w", room, domain.ErrMissingFields)
	}
	err := o.Rooms.With(room, func(r *core.Room) error {
		if _, err := member(r, sid); err != nil {
			return err
		}
		if err := o.Tracker.Authorize(room, id, sid); err != nil {
			return err
		}
		o.Relay.Broadcast(room, "", core.Edited{
			Type:      core.EventEdited,
			Room:      room,
			MessageID: id,
			Content:   content,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("edit %q in %q: %w", id, room, err)
	}
	return nil
}

func (o *Orchestrator) Delete(sid core.SessionID, room domain.RoomName, id domain.MessageID) error {
	err := o.Rooms.With(room, func(r *core.Room) error {
		if _, err := member(r, sid); err != nil {
			return err
		}
		if err := o.Tracker.Delete(room, id, sid); err != nil {
			return err
		}
		o.Relay.Broadcast(room, "", core.Deleted{
			Type:      core.EventDeleted,
			Room:      room,
			MessageID: id,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %q in %q: %w", id, room, err)
	}
	return nil
}

// Typing forwards a typing indicator under the member's own name.
func (o *Orchestrator) Typing(sid core.SessionID, room domain.RoomName, typing bool) error {
	kind := core.EventStopTyping
	if typing {
		kind = core.EventTyping
	}
	err := o.Rooms.With(room, func(r *core.Room) error {
		username, err := member(r, sid)
		if err != nil {
			return err
		}
		o.Relay.Broadcast(room, sid, core.Typing{Type: kind, Room: room, Username: username})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s in %q: %w", kind, room, err)
	}
	return nil
}
