package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flight_tracker"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	PassengersCreated prometheus.Counter
	FlightsCreated    prometheus.Counter
	Calculations      *prometheus.CounterVec
	PathLength        prometheus.Histogram
}

// New registers collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PassengersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passengers_created_total",
			Help:      "Total number of passengers created",
		}),
		FlightsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_created_total",
			Help:      "Total number of flights created",
		}),
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_calculations_total",
			Help:      "Flight path calculations by outcome",
		}, []string{"outcome"}),
		PathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconstructed_path_legs",
			Help:      "Number of legs in reconstructed paths",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

func (m *Metrics) IncPassengersCreated() {
	m.PassengersCreated.Inc()
}

func (m *Metrics) IncFlightsCreated() {
	m.FlightsCreated.Inc()
}

// ObserveCalculation records one calculation outcome and, on success, the
// length of the reconstructed path.
func (m *Metrics) ObserveCalculation(outcome string, legs int) {
	m.Calculations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.PathLength.Observe(float64(legs))
	}
}

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeNoPath   = "no_path"
	OutcomeError    = "error"
)
