package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	manager, registry := NewTestManagerAndRegistry()
	require.NotNil(t, manager)

	manager.CounterRegisteredUsers.Inc()
	manager.CounterWorkoutsLogged.Inc()
	manager.CounterWorkoutsLogged.Inc()
	manager.GaugeLifeSignal.Set(1)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	gathered := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		gathered[mf.GetName()] = mf
	}

	registeredUsers, ok := gathered["backend_test_server_registered_users"]
	require.True(t, ok)
	assert.Equal(t, float64(1), registeredUsers.GetMetric()[0].GetCounter().GetValue())

	workoutsLogged, ok := gathered["backend_test_server_workouts_logged"]
	require.True(t, ok)
	assert.Equal(t, float64(2), workoutsLogged.GetMetric()[0].GetCounter().GetValue())

	lifeSignal, ok := gathered["backend_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), lifeSignal.GetMetric()[0].GetGauge().GetValue())
}
