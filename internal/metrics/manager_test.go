package metrics_test

import (
	"testing"

	"alcyxob/workout-tracker/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()

	m.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "200"}).Inc()
	m.CounterTrainingWrites.WithLabelValues("create").Add(2)
	m.CounterLookupCacheHits.Inc()
	m.GaugeLifeSignal.Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterTrainingWrites.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeLifeSignal))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["workout_tracker_test_server_request"])
	assert.True(t, names["workout_tracker_test_server_training_writes"])
	assert.True(t, names["workout_tracker_test_server_life_signal"])
}

func TestNewManager_SeparateRegistries(t *testing.T) {
	// two managers on separate registries must not collide
	assert.NotPanics(t, func() {
		metrics.NewTestManager()
		metrics.NewTestManager()
	})
}

func TestSetupPrometheus_RuntimeCollectors(t *testing.T) {
	reg := metrics.SetupPrometheus()
	metrics.NewManager("workout_tracker", "api", reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["workout_tracker_api_life_signal"])
}
