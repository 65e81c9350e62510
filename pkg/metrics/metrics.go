package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connection metrics
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookout_connections_active",
			Help: "Number of currently connected websocket clients",
		},
	)

	TopicMembers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lookout_topic_members",
			Help: "Number of connections joined to each topic",
		},
		[]string{"topic"},
	)

	// Broadcast metrics
	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_broadcasts_total",
			Help: "Total number of broadcasts by topic",
		},
		[]string{"topic"},
	)

	DeliveriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookout_deliveries_total",
			Help: "Total number of per-connection payload deliveries",
		},
	)

	// Scheduler metrics
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_job_runs_total",
			Help: "Total number of scheduled job invocations by job and outcome",
		},
		[]string{"job", "outcome"},
	)

	JobSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_job_skips_total",
			Help: "Total number of job ticks skipped because the previous invocation was still running",
		},
		[]string{"job"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookout_job_duration_seconds",
			Help:    "Scheduled job invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// Alert metrics
	AlertsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookout_alerts_open",
			Help: "Number of currently open (unacknowledged) alerts",
		},
	)

	AlertsOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_alerts_opened_total",
			Help: "Total number of alerts opened by severity",
		},
		[]string{"severity"},
	)

	AlertsAcknowledgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookout_alerts_acknowledged_total",
			Help: "Total number of alerts acknowledged",
		},
	)

	// Command metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_commands_total",
			Help: "Total number of dispatched commands by kind and status",
		},
		[]string{"kind", "status"},
	)

	// Persistence metrics
	PersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_persist_failures_total",
			Help: "Total number of best-effort persistence failures by record kind",
		},
		[]string{"kind"},
	)

	// Health metrics
	DependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lookout_dependency_up",
			Help: "Whether each dependency is reachable (1 = connected, 0 = unreachable)",
		},
		[]string{"dependency"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(TopicMembers)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(DeliveriesTotal)
	prometheus.MustRegister(JobRunsTotal)
	prometheus.MustRegister(JobSkipsTotal)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(AlertsOpen)
	prometheus.MustRegister(AlertsOpenedTotal)
	prometheus.MustRegister(AlertsAcknowledgedTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(PersistFailuresTotal)
	prometheus.MustRegister(DependencyUp)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
