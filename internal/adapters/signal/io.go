package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/app"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, entry *app.Entry, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(entry.ID())).Msg("readPump closing")
		ctl.Registry.Unregister(entry)
		app.ConnectionsLive.Dec()
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	pongWait := ctl.Cfg.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(entry.ID())).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(entry.ID())).Msg("readPump read error")
				return
			}
			ctl.handleFrame(entry, c, data)
		}
	}
}

// handleFrame dispatches one inbound frame by its type tag. Malformed
// JSON and unknown types are dropped without touching the connection.
func (ctl *Controller) handleFrame(entry *app.Entry, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		app.FramesBadJSON.Inc()
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.handleJoin(entry, data)
	case "leave-room":
		ctl.handleLeave(entry, data)
	case "shape":
		ctl.handleShape(entry, data)
	case "delete-message":
		ctl.handleDelete(entry, data)
	case "update-message":
		ctl.handleUpdate(entry, data)
	case "cursor":
		ctl.handleCursor(entry, data)
	case "sync-all":
		ctl.handleSync(entry, data)
	default:
		app.FramesUnknown.Inc()
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown frame type")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
