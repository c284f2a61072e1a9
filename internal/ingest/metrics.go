package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_admitted_total",
		Help: "Chat references admitted to the broadcast pipeline",
	})

	metricRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rejected_total",
		Help: "Chat candidates rejected by reason",
	}, []string{"reason"})

	metricInjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_injected_total",
		Help: "Manually injected messages by type",
	}, []string{"type"})

	metricKeepalive = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_keepalive_fills_total",
		Help: "Filler requests broadcast by the idle keepalive",
	})
)
