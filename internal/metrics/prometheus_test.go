package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("yahoo", "history")
	r.RecordFetch("yahoo", "history")
	r.RecordError("fetch")
	r.RecordLastPrice("AAPL", 190.5)
	r.RecordJob("watchlist", nil)
	r.RecordJob("watchlist", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchesTotal.WithLabelValues("yahoo", "history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 190.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("watchlist", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("watchlist", "error")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordFetch("yahoo", "quote")
		r.RecordError("x")
		r.RecordLastPrice("X", 1)
		r.RecordLatency("op", 0.1)
		r.RecordJob("j", nil)
	})
}
