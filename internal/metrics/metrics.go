package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webstudio",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "webstudio",
			Name:      "orders_created_total",
			Help:      "Orders created through the checkout flow.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webstudio",
			Name:      "order_status_transitions_total",
			Help:      "Applied order status transitions by target status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, ordersCreated, statusTransitions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncOrdersCreated counts one created order.
func IncOrdersCreated() {
	ordersCreated.Inc()
}

// IncStatusTransition counts one applied transition to the given status.
func IncStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}
