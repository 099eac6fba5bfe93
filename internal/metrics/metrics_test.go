package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCalculation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCalculation(OutcomeOK, 3)
	m.ObserveCalculation(OutcomeOK, 1)
	m.ObserveCalculation(OutcomeNoPath, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calculations.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues(OutcomeNoPath)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PathLength))
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncPassengersCreated()
	m.IncFlightsCreated()
	m.IncFlightsCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassengersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FlightsCreated))
}
