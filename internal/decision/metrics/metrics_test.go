package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.IncrementScored("COMPLETE_SUCCESS", "section1_2")
	m.IncrementScored("COMPLETE_SUCCESS", "section1_2")
	m.IncrementFailed("store")
	m.IncrementTieBreak()
	m.ObserveBucket("personal_data", 25)
	m.ObserveEvaluateLatency(2 * time.Millisecond)
	m.ObserveBatchLatency(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsScored.WithLabelValues("COMPLETE_SUCCESS", "section1_2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsFailed.WithLabelValues("store")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AmbiguousTieBreaks))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BucketScore))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EvaluateLatency))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementScored("ERROR", "none")
		m.IncrementFailed("load")
		m.IncrementTieBreak()
		m.ObserveBucket("form_detection", 0)
		m.ObserveEvaluateLatency(time.Millisecond)
		m.ObserveBatchLatency(time.Millisecond)
	})
}
