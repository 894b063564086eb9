package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("InsertNoteWithTags", time.Now(), nil)
	m.ObserveOperation("InsertNoteWithTags", time.Now(), errors.New("x"))
	m.ObserveOperation("InsertNoteWithTags", time.Now(), nil)

	results := map[string]float64{}
	for _, metric := range family(t, m, "notes_service_operations_total").GetMetric() {
		for _, l := range metric.GetLabel() {
			if l.GetName() == "result" {
				results[l.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{"ok": 2, "error": 1}, results)
}

func TestWatchGauge(t *testing.T) {
	m := New()
	m.WatchOpened()
	m.WatchOpened()
	m.WatchClosed()

	g := family(t, m, "notes_watch_active").GetMetric()[0].GetGauge()
	assert.Equal(t, float64(1), g.GetValue())
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("op", time.Now(), nil)
		m.WatchOpened()
		m.WatchClosed()
		m.WatchReloaded()
		m.ObserveHTTP("/", "GET", "200", time.Millisecond)
		m.SetOrphanTags(3)
	})
}

func TestHandlerServesText(t *testing.T) {
	m := New()
	m.SetOrphanTags(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "notes_tags_orphans 4"))
}
