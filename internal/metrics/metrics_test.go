package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	m := New()
	m.Cycle("executed")
	m.Cycle("executed")
	m.Cycle("denied")
	m.Order("buy")
	m.NotificationFailed()
	m.SweepDuration(3 * time.Second)

	assert.Equal(t, 2.0, counterValue(t, m, "bot_cycles_total", map[string]string{"status": "executed"}))
	assert.Equal(t, 1.0, counterValue(t, m, "bot_cycles_total", map[string]string{"status": "denied"}))
	assert.Equal(t, 1.0, counterValue(t, m, "bot_orders_total", map[string]string{"side": "buy"}))
	assert.Equal(t, 1.0, counterValue(t, m, "bot_notifications_failed_total", nil))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Cycle("failed")
		m.Order("sell")
		m.NotificationFailed()
		m.SweepDuration(time.Second)
	})
}

func TestHandlerExposes(t *testing.T) {
	m := New()
	m.Order("sell")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bot_orders_total{side="sell"} 1`)
	assert.Contains(t, string(body), "bot_sweep_duration_seconds_bucket")
}
