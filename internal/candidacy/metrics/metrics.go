package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the nomination side of the pipeline.
type Metrics struct {
	CandidaciesSubmitted prometheus.Counter
	SupportsRecorded     prometheus.Counter
	CandidaciesEligible  prometheus.Counter
	SupportRejected      *prometheus.CounterVec
	SupportDuration      prometheus.Histogram
}

// New registers the candidacy metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CandidaciesSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "nhc_candidacies_submitted_total",
			Help: "Total number of candidacies submitted",
		}),
		SupportsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "nhc_supports_recorded_total",
			Help: "Total number of supports recorded",
		}),
		CandidaciesEligible: f.NewCounter(prometheus.CounterOpts{
			Name: "nhc_candidacies_eligible_total",
			Help: "Total number of candidacies that crossed the support threshold",
		}),
		SupportRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nhc_supports_rejected_total",
			Help: "Support submissions rejected, by reason",
		}, []string{"reason"}),
		SupportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nhc_support_duration_seconds",
			Help:    "Duration of support submissions including the recount",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCandidacySubmitted() {
	if m == nil {
		return
	}
	m.CandidaciesSubmitted.Inc()
}

// ObserveSupport records a successful support and whether it made the candidacy eligible.
func (m *Metrics) ObserveSupport(start time.Time, becameEligible bool) {
	if m == nil {
		return
	}
	m.SupportsRecorded.Inc()
	if becameEligible {
		m.CandidaciesEligible.Inc()
	}
	m.SupportDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSupportRejected(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.SupportRejected.WithLabelValues(reason).Inc()
}
