package realtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the realtime fanout.
type Metrics struct {
	OpenConnections prometheus.Gauge

	// Rejected upgrades by reason: missing_token, invalid_token, revoked_token, internal, upgrade
	Rejected *prometheus.CounterVec

	Broadcasts *prometheus.CounterVec

	// Per-connection write failures during fanout
	SendFailures *prometheus.CounterVec

	FanoutDuration *prometheus.HistogramVec
}

// NewMetrics registers the realtime metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eureka_realtime_open_connections",
			Help: "Number of admitted websocket connections",
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eureka_realtime_rejected_connections_total",
			Help: "Websocket upgrades refused, by reason",
		}, []string{"reason"}),
		Broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eureka_realtime_broadcasts_total",
			Help: "Events fanned out, by event type",
		}, []string{"type"}),
		SendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eureka_realtime_send_failures_total",
			Help: "Frames that could not be written to a connection, by event type",
		}, []string{"type"}),
		FanoutDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eureka_realtime_fanout_duration_seconds",
			Help:    "Time to write one event to every open connection",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"type"}),
	}
}

func (m *Metrics) connOpened() {
	if m != nil {
		m.OpenConnections.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m != nil {
		m.OpenConnections.Dec()
	}
}

func (m *Metrics) rejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) broadcast(eventType string, failures int, d time.Duration) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(eventType).Inc()
	if failures > 0 {
		m.SendFailures.WithLabelValues(eventType).Add(float64(failures))
	}
	m.FanoutDuration.WithLabelValues(eventType).Observe(d.Seconds())
}
