package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_brain_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Conversation metrics
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_messages_ingested_total",
			Help: "Messages appended to the conversation log",
		},
		[]string{"sender"}, // "user", "bot" or "admin"
	)

	IngestRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_brain_ingest_rejected_total",
			Help: "Inbound messages rejected by validation",
		},
	)

	// Push channel
	Observers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_brain_ws_observers",
			Help: "Currently connected dashboard observers",
		},
	)

	ObserversDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_ws_observers_dropped_total",
			Help: "Observers removed by the hub",
		},
		[]string{"reason"}, // "queue_full" or "send_failed"
	)

	// Memorization cache
	MemoryLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_memory_lookups_total",
			Help: "Memory lookups by result",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	MemoryLearned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_memory_learn_total",
			Help: "Learn attempts by outcome",
		},
		[]string{"outcome"}, // "learned", "duplicate", "persist_failed"
	)

	// Oracle
	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_brain_oracle_calls_total",
			Help: "Oracle calls by outcome",
		},
		[]string{"outcome"}, // "ok", "timeout", "transport", "remote_error"
	)

	OracleLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sales_brain_oracle_latency_seconds",
			Help:    "Oracle call latency",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30},
		},
	)
)
