package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/domain"
)

// Drawing payloads are opaque to the relay: message, id, pos and friends
// are carried as raw JSON and never inspected beyond routing.

func (ctl *Controller) handleShape(entry *app.Entry, data []byte) {
	type shapePayload struct {
		RoomID  domain.RoomID   `json:"roomId"`
		Message json.RawMessage `json:"message"`
	}
	var p shapePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("bad shape payload")
		return
	}
	ctl.Router.Broadcast(p.RoomID, struct {
		Type    string          `json:"type"`
		Message json.RawMessage `json:"message"`
	}{"shape", p.Message})
}

func (ctl *Controller) handleDelete(entry *app.Entry, data []byte) {
	type deletePayload struct {
		RoomID domain.RoomID   `json:"roomId"`
		ID     json.RawMessage `json:"id"`
	}
	var p deletePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("bad delete payload")
		return
	}
	ctl.Router.Broadcast(p.RoomID, struct {
		Type string          `json:"type"`
		ID   json.RawMessage `json:"id"`
	}{"delete", p.ID})
}

func (ctl *Controller) handleUpdate(entry *app.Entry, data []byte) {
	type updatePayload struct {
		RoomID     domain.RoomID   `json:"roomId"`
		ID         json.RawMessage `json:"id"`
		NewMessage json.RawMessage `json:"newMessage"`
	}
	var p updatePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("bad update payload")
		return
	}
	ctl.Router.Broadcast(p.RoomID, struct {
		Type       string          `json:"type"`
		ID         json.RawMessage `json:"id"`
		NewMessage json.RawMessage `json:"newMessage"`
	}{"update", p.ID, p.NewMessage})
}

// handleCursor excludes the sender: it has no use for its own cursor echo.
func (ctl *Controller) handleCursor(entry *app.Entry, data []byte) {
	type cursorPayload struct {
		RoomID   domain.RoomID   `json:"roomId"`
		Username string          `json:"username"`
		Pos      json.RawMessage `json:"pos"`
	}
	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("bad cursor payload")
		return
	}
	ctl.Router.BroadcastExcept(p.RoomID, entry.ID(), struct {
		Type     string          `json:"type"`
		Username string          `json:"username"`
		Pos      json.RawMessage `json:"pos"`
	}{"cursor", p.Username, p.Pos})
}

// handleSync carries the complete message set plus provenance, so every
// member (sender's own other connections included) can reconcile state.
func (ctl *Controller) handleSync(entry *app.Entry, data []byte) {
	type syncPayload struct {
		RoomID   domain.RoomID   `json:"roomId"`
		Messages json.RawMessage `json:"messages"`
		Socket   json.RawMessage `json:"socket"`
		Flag     json.RawMessage `json:"flag"`
	}
	var p syncPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("bad sync payload")
		return
	}
	ctl.Router.Broadcast(p.RoomID, struct {
		Type     string          `json:"type"`
		Messages json.RawMessage `json:"messages"`
		Socket   json.RawMessage `json:"socket"`
		Flag     json.RawMessage `json:"flag"`
	}{"sync", p.Messages, p.Socket, p.Flag})
}
