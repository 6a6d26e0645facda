package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It covers the scan ingress, classification outcomes, the auto-close
// sweeper, notification delivery and database/report durations.
type Metrics struct {
	ScansReceived     *prometheus.CounterVec   // Counter for processed scans by outcome
	EventsRecorded    *prometheus.CounterVec   // Counter for persisted events by kind
	AutoClosedDays    prometheus.Counter       // Counter for days closed by the sweeper
	NotificationsSent *prometheus.CounterVec   // Counter for bot notifications by type
	CommandReceived   *prometheus.CounterVec   // Counter for received bot commands
	SentMessages      *prometheus.CounterVec   // Counter for sent bot messages by kind
	CacheOps          *prometheus.CounterVec   // Counter for redis cache operations
	DBQueryDuration   *prometheus.HistogramVec // Histogram for database query durations
	ReportGeneration  *prometheus.HistogramVec // Histogram for report generation durations
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
//
// Parameters:
//   - reg: A Prometheus Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ScansReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_scans_received_total",
			Help: "Total number of card scans by outcome",
		}, []string{"result"}), // result: recorded, duplicate, unknown_card, unassigned_card
		EventsRecorded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_events_recorded_total",
			Help: "Total number of persisted attendance events",
		}, []string{"kind"}), // kind: arrival, departure
		AutoClosedDays: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "janus_auto_closed_days_total",
			Help: "Total number of day aggregates closed by the sweeper",
		}),
		NotificationsSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_notifications_sent_total",
			Help: "Total number of Telegram notifications by type",
		}, []string{"type"}), // type: arrival, departure, unknown_card, error
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_commands_received_total",
			Help: "Total number of received bot commands",
		}, []string{"command"}), // command: start, today, report, ...
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_sent_messages_total",
			Help: "Total number of sent bot messages",
		}, []string{"type"}), // type: text, edit, file, error
		CacheOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "janus_cache_operations_total",
			Help: "Total number of redis cache operations",
		}, []string{"operation", "result"}), // operation: get, set; result: hit, miss, success, error
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "janus_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_events', 'upsert_aggregate'
		ReportGeneration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "janus_report_generation_duration_seconds",
			Help: "Duration of report excel generation.",
		}, []string{"period"}), // period: last_1m, current_1m
	}
}
