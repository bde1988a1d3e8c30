package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application counters. The zero value is usable and
// records nothing until Register is called.
type Metrics struct {
	dashboardBuilds      *prometheus.CounterVec
	dashboardFailures    *prometheus.CounterVec
	applicationDecisions *prometheus.CounterVec
	submissionReviews    prometheus.Counter
	rateLimited          *prometheus.CounterVec

	registerOnce sync.Once
}

func New() *Metrics {
	return &Metrics{}
}

// Register registers the counters with the given registry. If registry is
// nil, this is a no-op. Subsequent calls are no-ops.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}

	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.dashboardBuilds = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ca_portal_dashboard_builds_total",
			Help: "Total number of dashboards built, by role view",
		}, []string{"view"})

		m.dashboardFailures = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ca_portal_dashboard_failures_total",
			Help: "Total number of dashboard builds aborted by a failed query, by role view",
		}, []string{"view"})

		m.applicationDecisions = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ca_portal_ca_application_decisions_total",
			Help: "Total number of CA application reviews, by resulting status",
		}, []string{"status"})

		m.submissionReviews = factory.NewCounter(prometheus.CounterOpts{
			Name: "ca_portal_submission_reviews_total",
			Help: "Total number of task submissions reviewed",
		})

		m.rateLimited = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ca_portal_rate_limited_requests_total",
			Help: "Total number of requests rejected by a rate limiter",
		}, []string{"limiter"})
	})
}

func (m *Metrics) DashboardBuilt(view string) {
	if m == nil || m.dashboardBuilds == nil {
		return
	}
	m.dashboardBuilds.WithLabelValues(view).Inc()
}

func (m *Metrics) DashboardFailed(view string) {
	if m == nil || m.dashboardFailures == nil {
		return
	}
	m.dashboardFailures.WithLabelValues(view).Inc()
}

func (m *Metrics) ApplicationDecided(status string) {
	if m == nil || m.applicationDecisions == nil {
		return
	}
	m.applicationDecisions.WithLabelValues(status).Inc()
}

func (m *Metrics) SubmissionReviewed() {
	if m == nil || m.submissionReviews == nil {
		return
	}
	m.submissionReviews.Inc()
}

func (m *Metrics) RateLimited(limiter string) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.WithLabelValues(limiter).Inc()
}
