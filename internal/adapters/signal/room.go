package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/app/orch"
	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

type joinPayload struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Room     string `json:"room"`
	Token    string `json:"token"`
}

type decisionPayload struct {
	Type       string `json:"type"`
	Room       string `json:"room"`
	Connection string `json:"connection"`
}

type roomPayload struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

func (ctl *SignalWSController) handleJoin(s *session, data []byte) {
	var p joinPayload
	if !ctl.decode(s, data, &p) {
		return
	}
	if !ctl.joins.Allow(s.client) {
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("client", s.client).Msg("join rate limited")
		ctl.reply(s, orch.NewNotice(orch.CodeRateLimited, "too many join attempts"))
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(s.sid)).Str("room", p.Room).Str("user", p.Username).Msg("join")
	ctl.report(s, ctl.Orch.Join(s.sid, domain.RoomName(p.Room), p.Username, domain.Token(p.Token)))
}

func (ctl *SignalWSController) handleDecision(s *session, data []byte, approve bool) {
	var p decisionPayload
	if !ctl.decode(s, data, &p) {
		return
	}
	room, requester := domain.RoomName(p.Room), core.SessionID(p.Connection)
	if approve {
		ctl.report(s, ctl.Orch.Approve(s.sid, room, requester))
		return
	}
	ctl.report(s, ctl.Orch.Reject(s.sid, room, requester))
}

// handleLeave leaves one room; the connection stays open.
func (ctl *SignalWSController) handleLeave(s *session, data []byte) {
	var p roomPayload
	if !ctl.decode(s, data, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(s.sid)).Str("room", p.Room).Msg("leave")
	ctl.report(s, ctl.Orch.Leave(s.sid, domain.RoomName(p.Room)))
}
