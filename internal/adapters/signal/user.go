package signal

import (
	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

// handleWhoAmI reports the connection id, which owners need for approve and
// reject, and the rooms this connection is in or waiting for.
func (ctl *SignalWSController) handleWhoAmI(s *session) {
	resp := struct {
		Type       string            `json:"type"`
		Connection core.SessionID    `json:"connection"`
		Rooms      []domain.RoomName `json:"rooms"`
	}{
		Type:       "whoami",
		Connection: s.sid,
		Rooms:      ctl.Orch.Rooms.RoomsOf(s.sid),
	}
	ctl.reply(s, resp)
}
