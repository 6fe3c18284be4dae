package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aegisai/aegis/pkg/constants"
)

// Metrics manages the Prometheus metrics of the pipeline.
type Metrics struct {
	IngestedEvents   *prometheus.CounterVec
	IngestLatency    *prometheus.HistogramVec
	TasksEnqueued    *prometheus.CounterVec
	TasksCompleted   *prometheus.CounterVec
	TasksRetried     *prometheus.CounterVec
	TasksDeadLetters *prometheus.CounterVec
	QueueDepth       *prometheus.GaugeVec
	AlertsRaised     *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	DriftScore       *prometheus.GaugeVec
	HealthScore      *prometheus.GaugeVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		IngestedEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_ingested_events_total",
				Help: "Total number of telemetry events ingested.",
			},
			[]string{"tenant_id", "source"},
		),
		IngestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aegis_ingest_latency_seconds",
				Help:    "Latency of ingestion requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		TasksEnqueued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_tasks_enqueued_total",
				Help: "Total number of background tasks enqueued.",
			},
			[]string{"kind"},
		),
		TasksCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_tasks_completed_total",
				Help: "Total number of background tasks completed.",
			},
			[]string{"kind", "result"},
		),
		TasksRetried: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_tasks_retried_total",
				Help: "Total number of background task retry attempts.",
			},
			[]string{"kind"},
		),
		TasksDeadLetters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_tasks_dead_letters_total",
				Help: "Total number of tasks routed to the dead letter table.",
			},
			[]string{"kind", "reason"},
		),
		QueueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aegis_task_queue_depth",
				Help: "Current depth of each tenant task queue.",
			},
			[]string{"tenant_id"},
		),
		AlertsRaised: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_alerts_raised_total",
				Help: "Total number of alerts raised.",
			},
			[]string{"tenant_id", "type", "severity"},
		),
		AlertsSuppressed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_alerts_suppressed_total",
				Help: "Total number of duplicate alerts swallowed by the cool-down window.",
			},
			[]string{"tenant_id", "type"},
		),
		DriftScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aegis_drift_score",
				Help: "Latest drift score per tenant and model.",
			},
			[]string{"tenant_id", "model_name"},
		),
		HealthScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aegis_health_score",
				Help: "Latest health score per tenant.",
			},
			[]string{"tenant_id"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_http_requests_total",
				Help: "Total number of HTTP requests served.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aegis_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordIngest records metrics for one ingestion request.
func (m *Metrics) RecordIngest(tenantID string, source constants.EventSource, count int, duration time.Duration) {
	m.IngestedEvents.WithLabelValues(tenantID, string(source)).Add(float64(count))
	m.IngestLatency.WithLabelValues(string(source)).Observe(duration.Seconds())
}

// RecordAlert records a raised alert.
func (m *Metrics) RecordAlert(tenantID string, alertType constants.AlertType, severity constants.AlertSeverity) {
	m.AlertsRaised.WithLabelValues(tenantID, string(alertType), string(severity)).Inc()
}

// RecordSuppressedAlert records a duplicate alert swallowed by the cool-down.
func (m *Metrics) RecordSuppressedAlert(tenantID string, alertType constants.AlertType) {
	m.AlertsSuppressed.WithLabelValues(tenantID, string(alertType)).Inc()
}

// RecordDrift records the latest drift score for a model.
func (m *Metrics) RecordDrift(tenantID, modelName string, score float64) {
	m.DriftScore.WithLabelValues(tenantID, modelName).Set(score)
}

// RecordHealth records the latest health score for a tenant.
func (m *Metrics) RecordHealth(tenantID string, score float64) {
	m.HealthScore.WithLabelValues(tenantID).Set(score)
}
