// Package telemetry exposes Prometheus metrics for the HTTP layer and for
// writes to clients, restaurants and coupons.
package telemetry

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entity labels.
const (
	EntityClient     = "client"
	EntityRestaurant = "restaurant"
	EntityCoupon     = "coupon"
)

// HTTP metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests received, partitioned by method, route and status class.",
		},
		[]string{"method", "route", "status_class"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, partitioned by method, route and status class.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5},
		},
		[]string{"method", "route", "status_class"},
	)
)

// Domain metrics
var (
	recordsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total number of records successfully created, partitioned by entity.",
		},
		[]string{"entity"},
	)

	recordsCreateFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_create_failed_total",
			Help: "Total number of failed create attempts, partitioned by entity and reason.",
		},
		[]string{"entity", "reason"}, // reasons: validation | conflict | reference | db
	)

	recordsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_deleted_total",
			Help: "Total number of records permanently deleted, partitioned by entity.",
		},
		[]string{"entity"},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry.
// Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDurationSeconds,
			recordsCreatedTotal,
			recordsCreateFailedTotal,
			recordsDeletedTotal,
		)
	})
}

func IncCreated(entity string) {
	recordsCreatedTotal.WithLabelValues(entity).Inc()
}

func IncCreateFailed(entity, reason string) {
	recordsCreateFailedTotal.WithLabelValues(entity, reason).Inc()
}

func AddDeleted(entity string, n int64) {
	recordsDeletedTotal.WithLabelValues(entity).Add(float64(n))
}

// Middleware measures one HTTP request. The route label is the matched route
// template (e.g. /clientes/cpf/:cpf), never the raw path.
//
// Errors returned by the chain are handed to the app's ErrorHandler here so
// the recorded status is the one the client receives.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		statusClass := strconv.Itoa(c.Response().StatusCode()/100) + "xx"

		httpRequestsTotal.WithLabelValues(method, route, statusClass).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route, statusClass).Observe(time.Since(start).Seconds())
		return nil
	}
}

// MetricsHandler exposes /metrics in Prometheus text exposition format.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
