// Package signal owns the websocket side of the relay: handshake and
// credential check, the read/write pumps, and frame dispatch. Room
// membership and fan-out live in internal/app.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/auth"
	"github.com/dkeye/Sketch/internal/config"
	"github.com/dkeye/Sketch/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Verifier *auth.Verifier
	Registry *app.Registry
	Router   *app.Router
	Cfg      *config.Config
}

func NewController(verifier *auth.Verifier, reg *app.Registry, router *app.Router, cfg *config.Config) *Controller {
	return &Controller{
		Verifier: verifier,
		Registry: reg,
		Router:   router,
		Cfg:      cfg,
	}
}

// WsConn wraps one websocket connection. Only the connection's writePump
// reads from send; everyone else goes through TrySend.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection, verifies the bearer token from the
// query string and, on success, registers the connection and starts its
// pumps. A failed verification is answered with a plain-text reason and
// a close frame; no registry entry is ever created for it.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	user, err := ctl.Verifier.Verify(c.Query("token"))
	if err != nil {
		ctl.reject(ws, err)
		return
	}

	id := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", string(user.ID)).Msg("new WS connection")

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	entry := ctl.Registry.Register(id, *user, conn)
	app.ConnectionsLive.Inc()

	ctl.sendJSON(conn, struct {
		Message string `json:"message"`
		User    any    `json:"user"`
	}{
		Message: "connected",
		User:    user,
	})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, entry, conn)
}

func (ctl *Controller) reject(ws *websocket.Conn, err error) {
	app.HandshakesRejected.Inc()

	reason := "unauthorized"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		reason = "missing token"
	case errors.Is(err, auth.ErrMissingClaims):
		reason = "token missing required claims"
	case errors.Is(err, auth.ErrInvalidToken):
		reason = "invalid or expired token"
	}
	log.Warn().Err(err).Str("module", "signal").Msg("handshake rejected")

	deadline := time.Now().Add(time.Second)
	_ = ws.SetWriteDeadline(deadline)
	_ = ws.WriteMessage(websocket.TextMessage, []byte(reason))
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = ws.Close()
}
