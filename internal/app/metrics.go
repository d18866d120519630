package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Silent drops stay silent on the wire; these counters are the only place
// they become visible.
var (
	ConnectionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sketch_connections_live",
		Help: "Connections currently registered with the relay.",
	})
	HandshakesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketch_handshakes_rejected_total",
		Help: "Handshakes closed because credential verification failed.",
	})
	framesForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketch_frames_forwarded_total",
		Help: "Frames delivered to room members.",
	})
	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketch_frames_dropped_total",
		Help: "Per-recipient sends abandoned on error or backpressure.",
	})
	FramesBadJSON = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketch_frames_bad_json_total",
		Help: "Inbound frames ignored because they were not valid JSON.",
	})
	FramesUnknown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketch_frames_unknown_total",
		Help: "Inbound frames ignored because of an unknown type.",
	})
)
