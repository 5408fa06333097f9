package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_SafeToConstructTwice(t *testing.T) {
	a := New()
	b := New()
	assert.Same(t, a.collectors, b.collectors)
}

func TestRecorder_Gauges(t *testing.T) {
	r := New()
	r.RecordPrediction("TEST", 101.5, 102.25)
	r.RecordTraining("TEST", 0.01, 0.02, 40)
	r.RecordSentiment("TEST", 0.3, 7)
	r.RecordOperation("predict", "success", 20*time.Millisecond)

	assert.Equal(t, 102.25, testutil.ToFloat64(r.predicted.WithLabelValues("TEST")))
	assert.Equal(t, 101.5, testutil.ToFloat64(r.lastActual.WithLabelValues("TEST")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.samples.WithLabelValues("TEST")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.headlines.WithLabelValues("TEST")))
}

func TestRecorder_ErrorKindDefaults(t *testing.T) {
	r := New()
	before := testutil.ToFloat64(r.errorsTotal.WithLabelValues("internal"))
	r.RecordError("")
	assert.Equal(t, before+1, testutil.ToFloat64(r.errorsTotal.WithLabelValues("internal")))
}
