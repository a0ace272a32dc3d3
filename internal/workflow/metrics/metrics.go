package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the edit workflow.
type Metrics struct {
	ProfilesCreated  prometheus.Counter
	EditsStarted     *prometheus.CounterVec
	EditsCancelled   *prometheus.CounterVec
	EditsCommitted   *prometheus.CounterVec
	EditsRejected    *prometheus.CounterVec
	FieldsCleared    *prometheus.CounterVec
	ProfileSaves     prometheus.Counter
	SaveFailures     prometheus.Counter
	SaveLatency      prometheus.Histogram
}

// New creates and registers all workflow metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stammdaten_profiles_created_total",
			Help: "Total number of profiles created",
		}),
		EditsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stammdaten_edits_started_total",
			Help: "Total number of edit processes started, labeled by kind",
		}, []string{"kind"}),
		EditsCancelled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stammdaten_edits_cancelled_total",
			Help: "Total number of edit processes cancelled, labeled by kind",
		}, []string{"kind"}),
		EditsCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stammdaten_edits_committed_total",
			Help: "Total number of edit submissions that updated the profile, labeled by kind",
		}, []string{"kind"}),
		EditsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stammdaten_edits_rejected_total",
			Help: "Total number of edit submissions rejected by validation, labeled by kind",
		}, []string{"kind"}),
		FieldsCleared: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stammdaten_fields_cleared_total",
			Help: "Total number of direct clear/remove intents applied, labeled by field",
		}, []string{"field"}),
		ProfileSaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stammdaten_profile_saves_total",
			Help: "Total number of persistence commits attempted",
		}),
		SaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stammdaten_profile_save_failures_total",
			Help: "Total number of persistence commits that failed",
		}),
		SaveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stammdaten_profile_save_latency_seconds",
			Help:    "Latency of persistence commits in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementProfilesCreated increments the profiles created counter by 1
func (m *Metrics) IncrementProfilesCreated() {
	m.ProfilesCreated.Inc()
}

func (m *Metrics) IncrementEditsStarted(kind string) {
	m.EditsStarted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementEditsCancelled(kind string) {
	m.EditsCancelled.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementEditsCommitted(kind string) {
	m.EditsCommitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementEditsRejected(kind string) {
	m.EditsRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementFieldsCleared(field string) {
	m.FieldsCleared.WithLabelValues(field).Inc()
}

func (m *Metrics) IncrementProfileSaves() {
	m.ProfileSaves.Inc()
}

func (m *Metrics) IncrementSaveFailures() {
	m.SaveFailures.Inc()
}

// ObserveSaveLatency records the latency of one persistence commit.
func (m *Metrics) ObserveSaveLatency(durationSeconds float64) {
	m.SaveLatency.Observe(durationSeconds)
}
