package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dkeye/PrivChat/internal/app"
	"github.com/dkeye/PrivChat/internal/app/orch"
	"github.com/dkeye/PrivChat/internal/config"
	"github.com/dkeye/PrivChat/internal/core"
)

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Registry *app.Registry

	cfg      *config.Config
	joins    *JoinRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, reg *app.Registry, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:     o,
		Registry: reg,
		cfg:      cfg,
		joins:    NewJoinRateLimiter(rate.Limit(cfg.JoinRate), cfg.JoinBurst),
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin accepts everything when no origins are configured. Requests
// without an Origin header are not from a browser and pass.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(ctl.cfg.AllowedOrigins, origin)
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops the queue. The write pump flushes what is left and then
// closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	client := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", client).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, conn, client, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, &session{sid: sid, client: client, conn: conn})
}

// session is the read side state of one websocket.
type session struct {
	sid    core.SessionID
	client string
	conn   *WsSignalConn
}
