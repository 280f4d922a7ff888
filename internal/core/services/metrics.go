package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "votefeed_poll_ticks_total",
	Help: "Poll ticks by outcome (ok, empty, failed, skipped)",
}, []string{"outcome"})

var pollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "votefeed_poll_duration_seconds",
	Help:    "The duration of one poll round trip to the event store",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
})

var pollBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "votefeed_poll_batch_size",
	Help:    "The number of events returned by a successful poll",
	Buckets: prometheus.ExponentialBuckets(1, 2, 12),
})

var cursorTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "votefeed_cursor_timestamp_seconds",
	Help: "Unix time of the newest processed event",
})

var eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "votefeed_events_dispatched_total",
	Help: "Vote events turned into notifications, by display color",
}, []string{"color"})

var votesCast = promauto.NewCounter(prometheus.CounterOpts{
	Name: "votefeed_votes_cast_total",
	Help: "Votes successfully appended to the event store",
})
