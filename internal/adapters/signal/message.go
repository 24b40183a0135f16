package signal

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/PrivChat/internal/domain"
)

type messagePayload struct {
	Type      string          `json:"type"`
	Room      string          `json:"room"`
	MessageID string          `json:"message_id"`
	Content   json.RawMessage `json:"content,omitempty"`
}

func (ctl *SignalWSController) handleSend(s *session, data []byte) {
	var p messagePayload
	if !ctl.decode(s, data, &p) {
		return
	}
	ctl.report(s, ctl.Orch.Send(s.sid, domain.RoomName(p.Room), domain.MessageID(p.MessageID), p.Content))
}

func (ctl *SignalWSController) handleSeen(s *session, data []byte) {
	var p messagePayload
	if !ctl.decode(s, data, &p) {
		return
	}
	ctl.report(s, ctl.Orch.Seen(s.sid, domain.RoomName(p.Room), domain.MessageID(p.MessageID)))
}

func (ctl *SignalWSController) handleEdit(s *session, data []byte) {
	var p messagePayload
	if !ctl.decode(s, data, &p) {
		return
	}
	ctl.report(s, ctl.Orch.Edit(s.sid, domain.RoomName(p.Room), domain.MessageID(p.MessageID), p.Content))
}

func (ctl *SignalWSController) handleDelete(s *session, data []byte) {
	var p messagePayload
	if !ctl.decode(s, data, &p) {
		return
	}
	ctl.report(s, ctl.Orch.Delete(s.sid, domain.RoomName(p.Room), domain.MessageID(p.MessageID)))
}

func (ctl *SignalWSController) handleTyping(s *session, data []byte, typing bool) {
	var p roomPayload
	if !ctl.decode(s, data, &p) {
		return
	}
	ctl.report(s, ctl.Orch.Typing(s.sid, domain.RoomName(p.Room), typing))
}
