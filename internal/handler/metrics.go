package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "npc_stories_created_total",
		Help: "Total number of stories uploaded through the API.",
	})

	wsSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "npc_ws_sessions_active",
		Help: "Number of open WebSocket talk sessions.",
	})

	wsMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npc_ws_messages_total",
			Help: "Total number of WebSocket talk frames by status.",
		},
		[]string{"status"},
	)
)
