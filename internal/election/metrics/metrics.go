package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks balloting and the close engine.
type Metrics struct {
	VotesCast         prometheus.Counter
	VotesRejected     *prometheus.CounterVec
	ElectionsClosed   *prometheus.CounterVec
	PromotionFailures prometheus.Counter
	CloseDuration     prometheus.Histogram
	ResultsCache      *prometheus.CounterVec
}

// New registers the election metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesCast: f.NewCounter(prometheus.CounterOpts{
			Name: "nhc_votes_cast_total",
			Help: "Total number of ballots recorded",
		}),
		VotesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nhc_votes_rejected_total",
			Help: "Ballots rejected, by reason",
		}, []string{"reason"}),
		ElectionsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nhc_elections_closed_total",
			Help: "Close commands, by outcome (closed or already_closed)",
		}, []string{"outcome"}),
		PromotionFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "nhc_role_promotion_failures_total",
			Help: "Winners whose role assignment failed during close",
		}),
		CloseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nhc_election_close_duration_seconds",
			Help:    "Duration of the close unit of work",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ResultsCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nhc_results_cache_total",
			Help: "Results cache lookups, by result (hit, miss, error)",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementVoteCast() {
	if m == nil {
		return
	}
	m.VotesCast.Inc()
}

func (m *Metrics) IncrementVoteRejected(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.VotesRejected.WithLabelValues(reason).Inc()
}

// ObserveClose records a close command. Call with time.Now() taken before the unit of work.
func (m *Metrics) ObserveClose(start time.Time, alreadyClosed bool, promotionFailures int) {
	if m == nil {
		return
	}
	outcome := "closed"
	if alreadyClosed {
		outcome = "already_closed"
	}
	m.ElectionsClosed.WithLabelValues(outcome).Inc()
	m.PromotionFailures.Add(float64(promotionFailures))
	m.CloseDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementCache(result string) {
	if m == nil {
		return
	}
	m.ResultsCache.WithLabelValues(result).Inc()
}
