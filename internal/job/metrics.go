package job

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records batch job activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Runs                 *prometheus.CounterVec
	RecordsFailed        *prometheus.CounterVec
	RunDuration          *prometheus.HistogramVec
	NotificationsCreated *prometheus.CounterVec
	CardsArchived        prometheus.Counter
	QRMigration          *prometheus.CounterVec
}

// NewMetrics registers the job metrics on reg, or on the default registry
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdao_job_runs_total",
			Help: "Total batch job runs by job and result",
		}, []string{"job", "result"}),

		RecordsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdao_job_records_failed_total",
			Help: "Records a job failed to process and skipped",
		}, []string{"job"}),

		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdao_job_run_duration_seconds",
			Help:    "Duration of a complete job run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),

		NotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdao_notifications_created_total",
			Help: "Notifications created by the reminder job by type",
		}, []string{"type"}),

		CardsArchived: factory.NewCounter(prometheus.CounterOpts{
			Name: "pdao_cards_archived_total",
			Help: "Cards archived after expiry",
		}),

		QRMigration: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdao_qr_migration_records_total",
			Help: "QR payload migration outcomes (regenerated, skipped, error)",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeRun(job string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Runs.WithLabelValues(job, result).Inc()
	m.RunDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

func (m *Metrics) recordFailed(job string) {
	if m != nil {
		m.RecordsFailed.WithLabelValues(job).Inc()
	}
}

func (m *Metrics) notificationCreated(notifType string) {
	if m != nil {
		m.NotificationsCreated.WithLabelValues(notifType).Inc()
	}
}

func (m *Metrics) cardArchived() {
	if m != nil {
		m.CardsArchived.Inc()
	}
}

func (m *Metrics) qrOutcome(outcome string) {
	if m != nil {
		m.QRMigration.WithLabelValues(outcome).Inc()
	}
}
