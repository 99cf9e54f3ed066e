// Package metrics exposes Prometheus collectors for the session coordinator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so tests can build as many as they like.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	roomsActive        prometheus.Gauge
	participantsActive prometheus.Gauge
	connectionsActive  prometheus.Gauge

	joinsTotal        *prometheus.CounterVec
	eventsTotal       *prometheus.CounterVec
	relayTotal        *prometheus.CounterVec
	backpressureTotal prometheus.Counter

	eventDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		roomsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_rooms_active",
			Help: "Number of live rooms",
		}),
		participantsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_participants_active",
			Help: "Number of participants across all rooms",
		}),
		connectionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_connections_active",
			Help: "Number of open signaling connections",
		}),

		joinsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_joins_total",
			Help: "Join attempts by outcome",
		}, []string{"result"}),
		eventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_signal_events_total",
			Help: "Inbound signaling events by type and outcome",
		}, []string{"type", "result"}),
		relayTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_relay_messages_total",
			Help: "Relayed negotiation messages by kind and outcome",
		}, []string{"kind", "result"}),
		backpressureTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "huddle_backpressure_total",
			Help: "Outbound frames rejected by a full connection buffer",
		}),

		eventDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "huddle_signal_event_duration_seconds",
			Help:    "Time spent handling one inbound event",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"type"}),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) SetRooms(n int) {
	if c == nil {
		return
	}
	c.roomsActive.Set(float64(n))
}

func (c *Collector) SetParticipants(n int) {
	if c == nil {
		return
	}
	c.participantsActive.Set(float64(n))
}

func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Inc()
}

func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Dec()
}

// Join records a join outcome: "ok", "rebind" or a rejection reason.
func (c *Collector) Join(result string) {
	if c == nil {
		return
	}
	c.joinsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) Event(eventType, result string, took time.Duration) {
	if c == nil {
		return
	}
	c.eventsTotal.WithLabelValues(eventType, result).Inc()
	c.eventDuration.WithLabelValues(eventType).Observe(took.Seconds())
}

func (c *Collector) Relay(kind, result string) {
	if c == nil {
		return
	}
	c.relayTotal.WithLabelValues(kind, result).Inc()
}

func (c *Collector) Backpressure() {
	if c == nil {
		return
	}
	c.backpressureTotal.Inc()
}
