package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polycopy_feed_events_total",
		Help: "Trade activity events matched to a tracked wallet",
	})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polycopy_events_dropped_total",
		Help: "Events dropped before execution",
	}, []string{"reason"})

	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polycopy_orders_total",
		Help: "The total number of copy orders submitted",
	}, []string{"status", "side"})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polycopy_feed_reconnects_total",
		Help: "Feed reconnection attempts",
	})

	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polycopy_feed_connected",
		Help: "1 while the activity feed is streaming, 0 otherwise",
	})

	CopyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polycopy_copy_latency_seconds",
		Help:    "Latency from event receipt to order submission",
		Buckets: prometheus.DefBuckets,
	})
)
