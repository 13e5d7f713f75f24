package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "respwire"
	subsystem = "gateway"
)

// Outcomes recorded on top of the reply kinds.
const (
	OutcomeBadRequest         = "bad_request"
	OutcomeServerError        = "server_error"
	OutcomeProtocolError      = "protocol_error"
	OutcomeCommunicationError = "communication_error"
)

type metrics struct {
	replies  *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replies_total",
				Help:      "Number of /query requests by reply kind or failure.",
			}, []string{"outcome"}),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Time spent on the round trip to the server.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			}),
	}

	reg.MustRegister(m.replies, m.duration)
	return m
}
