package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Chat messages received from the gateway",
	})

	metricReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_reconnects_total",
		Help: "Connections established to the chat gateway",
	})

	metricConnectMS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_connect_ms",
		Help:    "Time to establish a chat gateway connection (ms)",
		Buckets: prometheus.ExponentialBuckets(10, 1.8, 10),
	})

	metricEventDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_event_drops_total",
		Help: "Chat events dropped due to slow consumer",
	})
)
