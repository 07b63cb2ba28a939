package auth

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink is an ActivitySink that counts auth outcomes per event type.
type MetricsSink struct {
	events *prometheus.CounterVec
}

// NewMetricsSink registers the auth counters on the given registry.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardauth_events_total",
			Help: "Authentication events by type",
		}, []string{"event"}),
	}

	reg.MustRegister(s.events)

	return s
}

// Record implements ActivitySink.
func (s *MetricsSink) Record(_ context.Context, event ActivityEvent) error {
	s.events.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

var _ ActivitySink = (*MetricsSink)(nil)
