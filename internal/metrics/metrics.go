package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the bot's Prometheus instrumentation. A nil
// *Metrics is a valid no-op receiver so services never need to guard.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	broadcastSent    prometheus.Counter
	broadcastSkipped prometheus.Counter
	deliveryErrors   prometheus.Counter
	uploadsIngested  *prometheus.CounterVec
	reportsRendered  prometheus.Counter
}

// New registers the bot's collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		broadcastSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broadcast_messages_sent_total",
			Help: "Result messages delivered by the weekly broadcast",
		}),
		broadcastSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broadcast_recipients_skipped_total",
			Help: "Bound chats skipped during broadcast (no data or send failure)",
		}),
		deliveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_errors_total",
			Help: "Failed Telegram sends",
		}),
		uploadsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spreadsheet_uploads_total",
			Help: "Admin spreadsheet uploads ingested, by kind",
		}, []string{"kind"}),
		reportsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_reports_rendered_total",
			Help: "Progress PDFs rendered",
		}),
	}

	registry.MustRegister(
		m.broadcastSent,
		m.broadcastSkipped,
		m.deliveryErrors,
		m.uploadsIngested,
		m.reportsRendered,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

func (m *Metrics) BroadcastSent() {
	if m != nil {
		m.broadcastSent.Inc()
	}
}

func (m *Metrics) BroadcastSkipped() {
	if m != nil {
		m.broadcastSkipped.Inc()
	}
}

func (m *Metrics) DeliveryError() {
	if m != nil {
		m.deliveryErrors.Inc()
	}
}

func (m *Metrics) UploadIngested(kind string) {
	if m != nil {
		m.uploadsIngested.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ReportRendered() {
	if m != nil {
		m.reportsRendered.Inc()
	}
}
