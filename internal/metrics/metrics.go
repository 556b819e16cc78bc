package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vantry",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	stockUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vantry",
			Name:      "stock_updates_total",
			Help:      "Item rows successfully updated.",
		},
	)

	updateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vantry",
			Name:      "update_failures_total",
			Help:      "Rejected update rows by reason.",
		},
		[]string{"reason"},
	)

	ordersComposed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vantry",
			Name:      "orders_composed_total",
			Help:      "Purchase orders composed.",
		},
	)

	workerTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vantry",
			Name:      "worker_tasks_total",
			Help:      "Dispatch worker task outcomes.",
		},
		[]string{"type", "outcome"},
	)
)

// Register registers all collectors. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, stockUpdates, updateFailures, ordersComposed, workerTasks)
	})
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncHTTP(endpoint string)            { httpRequests.WithLabelValues(endpoint).Inc() }
func AddStockUpdates(n int)              { stockUpdates.Add(float64(n)) }
func IncUpdateFailure(reason string)     { updateFailures.WithLabelValues(reason).Inc() }
func IncOrdersComposed()                 { ordersComposed.Inc() }
func IncWorkerTask(task, outcome string) { workerTasks.WithLabelValues(task, outcome).Inc() }
