package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	IncHTTP("/update")
	IncHTTP("/update")
	assert.Equal(t, float64(2), testutil.ToFloat64(httpRequests.WithLabelValues("/update")))

	AddStockUpdates(3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(stockUpdates), float64(3))

	IncUpdateFailure("not_found")
	assert.Equal(t, float64(1), testutil.ToFloat64(updateFailures.WithLabelValues("not_found")))

	IncWorkerTask("notify_order", "completed")
	assert.Equal(t, float64(1), testutil.ToFloat64(workerTasks.WithLabelValues("notify_order", "completed")))
}
