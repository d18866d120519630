package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/domain"
)

func (ctl *Controller) handleJoin(entry *app.Entry, data []byte) {
	type joinPayload struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		app.FramesBadJSON.Inc()
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("join without roomId")
		return
	}
	ctl.Registry.Join(entry, p.RoomID)
}

func (ctl *Controller) handleLeave(entry *app.Entry, data []byte) {
	type leavePayload struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		app.FramesBadJSON.Inc()
		log.Warn().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	if p.RoomID == "" {
		app.FramesBadJSON.Inc()
		log.Warn().Str("module", "signal").Str("conn", string(entry.ID())).Msg("leave without roomId")
		return
	}
	ctl.Registry.Leave(entry, p.RoomID)
}
