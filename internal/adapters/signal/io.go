package signal

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/app/orch"
	"github.com/dkeye/PrivChat/internal/core"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				// Queue closed and drained.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, s *session) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(s.sid)
		ctl.Registry.Unbind(s.sid)
		s.conn.Close()
	}()

	ws := s.conn.conn
	_ = ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("readPump read error")
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
			ctl.handleSignal(s, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(s *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("bad json")
		ctl.reply(s, map[string]any{
			"type":  "error",
			"error": "bad_json",
		})
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(s, data)
	case "approve":
		ctl.handleDecision(s, data, true)
	case "reject":
		ctl.handleDecision(s, data, false)
	case "leave":
		ctl.handleLeave(s, data)
	case "send":
		ctl.handleSend(s, data)
	case "seen":
		ctl.handleSeen(s, data)
	case "edit":
		ctl.handleEdit(s, data)
	case "delete":
		ctl.handleDelete(s, data)
	case "typing":
		ctl.handleTyping(s, data, true)
	case "stop_typing":
		ctl.handleTyping(s, data, false)
	case "ping":
		ctl.handlePing(s)
	case "whoami":
		ctl.handleWhoAmI(s)
	default:
		log.Warn().Str("module", "signal").Str("sid", string(s.sid)).Str("type", env.Type).Msg("unknown signal")
		ctl.reply(s, map[string]any{
			"type":  "error",
			"error": "unknown_type",
		})
	}
}

// decode fills p from data, answering with a bad_payload notice on failure.
func (ctl *SignalWSController) decode(s *session, data []byte, p any) bool {
	if err := json.Unmarshal(data, p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(s.sid)).Msg("bad payload")
		ctl.reply(s, orch.NewNotice(orch.CodeBadPayload, "malformed payload"))
		return false
	}
	return true
}

func (ctl *SignalWSController) reply(s *session, v any) {
	ctl.Registry.SendTo(s.sid, v)
}

func (ctl *SignalWSController) report(s *session, err error) {
	ctl.Orch.Report(s.sid, err)
}

var _ core.SignalConnection = (*WsSignalConn)(nil)
