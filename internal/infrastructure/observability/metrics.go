package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry              *prometheus.Registry
	EngineConnected       prometheus.Gauge
	CommandsSentTotal     *prometheus.CounterVec
	EventsReceivedTotal   *prometheus.CounterVec
	EventsDroppedTotal    *prometheus.CounterVec
	ReconnectsTotal       prometheus.Counter
	RendersTotal          *prometheus.CounterVec
	ScreenshotsTotal      prometheus.Counter
	GenMediaRequestsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		EngineConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "virtual_studio",
			Name:      "engine_connected",
			Help:      "1 when the engine streaming session is ready",
		}),
		CommandsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "commands_sent_total",
			Help:      "Outbound engine commands by kind",
		}, []string{"type", "action"}),
		EventsReceivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "events_received_total",
			Help:      "Inbound engine events dispatched by kind",
		}, []string{"type", "action"}),
		EventsDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "events_dropped_total",
			Help:      "Inbound engine events dropped by reason",
		}, []string{"reason"}),
		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "reconnects_total",
			Help:      "Engine reconnect attempts",
		}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "renders_total",
			Help:      "Render jobs by terminal outcome",
		}, []string{"outcome"}),
		ScreenshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "screenshots_total",
			Help:      "Screenshots captured",
		}),
		GenMediaRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtual_studio",
			Name:      "genmedia_requests_total",
			Help:      "Generative media API calls by operation and outcome",
		}, []string{"op", "outcome"}),
	}
	r.MustRegister(m.EngineConnected, m.CommandsSentTotal, m.EventsReceivedTotal,
		m.EventsDroppedTotal, m.ReconnectsTotal, m.RendersTotal, m.ScreenshotsTotal,
		m.GenMediaRequestsTotal)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
