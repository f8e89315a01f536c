package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "carefront_ws_connections",
		Help: "Number of open realtime connections.",
	})
	eventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carefront_ws_events_total",
		Help: "Events emitted by the hub, by event name and target room.",
	}, []string{"event", "room"})
	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carefront_ws_dropped_frames_total",
		Help: "Frames dropped because a connection's outbox was full.",
	})
	inboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carefront_ws_inbound_events_total",
		Help: "Events received from clients, by event name and outcome.",
	}, []string{"event", "outcome"})
)
