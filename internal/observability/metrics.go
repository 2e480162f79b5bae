// Package observability exposes Prometheus instrumentation for the server.
package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsStarted counts owner identities minted on first visit.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestegg_sessions_started_total",
		Help: "Anonymous sessions assigned an owner identity",
	})

	// CalculationsPreviewed counts one-off calculations that were not persisted.
	CalculationsPreviewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestegg_calculations_previewed_total",
		Help: "One-off savings calculations rendered without persisting",
	})

	// GoalsCreated counts inserted goals.
	GoalsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestegg_goals_created_total",
		Help: "Savings goals persisted",
	})

	// GoalsDeleted counts delete requests by outcome.
	GoalsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestegg_goals_deleted_total",
		Help: "Delete requests by outcome",
	}, []string{"result"}) // "owned" or "missing"

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nestegg_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "route", "status"})
)

// DeleteResult labels a delete outcome.
func DeleteResult(deleted bool) string {
	if deleted {
		return "owned"
	}
	return "missing"
}

// Middleware records request latency per registered route.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		requestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(statusOf(c, err))).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// statusOf reports the status the error handler will send. Plain errors
// become 500 there, so they are labelled 500 here as well.
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
