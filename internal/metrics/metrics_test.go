package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.Attempt("timeout")
	m.Attempt("timeout")
	m.Attempt("ok")
	m.Result(true, 1.5)
	m.Apply(nil)
	m.Apply(errors.New("x"))
	m.Frames(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationAttempts.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationResults.WithLabelValues(ResultFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Applies.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FrameCallbacks))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Attempt("ok")
		m.Result(false, 1)
		m.Apply(nil)
		m.Frames(1)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Result(false, 0.2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `scene_generation_results_total{source="generated"} 1`)
}
