package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

// Router fans frames out to room members. It owns no state of its own;
// membership is read from the registry at routing time.
type Router struct {
	Registry *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{Registry: reg}
}

// Broadcast forwards v to every current member of room, sender included.
func (rt *Router) Broadcast(room domain.RoomID, v any) {
	rt.fanOut(room, "", v)
}

// BroadcastExcept forwards v to every current member of room except skip.
func (rt *Router) BroadcastExcept(room domain.RoomID, skip core.ConnID, v any) {
	rt.fanOut(room, skip, v)
}

func (rt *Router) fanOut(room domain.RoomID, skip core.ConnID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("fanOut marshal")
		return
	}
	for _, e := range rt.Registry.MembersOf(room) {
		if skip != "" && e.ID() == skip {
			continue
		}
		// A failed send is abandoned for that recipient only.
		if err := e.TrySend(b); err != nil {
			framesDropped.Inc()
			log.Warn().Err(err).Str("module", "app.router").Str("conn", string(e.ID())).Str("room", string(room)).Msg("forward failed")
			continue
		}
		framesForwarded.Inc()
	}
}
