package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gaugeConsumers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_consumers_connected",
		Help: "Currently connected read consumers",
	})

	metricBroadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_broadcasts_total",
		Help: "Broadcast frames sent by message type",
	}, []string{"type"})
)
