// Package metrics exposes Prometheus collectors for HTTP traffic and deal activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ifm"

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DealOutcomes     *prometheus.CounterVec
	RaceRecoveries   prometheus.Counter
	ResaleOperations *prometheus.CounterVec
	AuthAttempts     *prometheus.CounterVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DealOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deal_outcomes_total",
				Help:      "Deal requests by outcome",
			},
			[]string{"outcome"},
		),
		RaceRecoveries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deal_race_recoveries_total",
				Help:      "Deal writes retried after a unique constraint violation",
			},
		),
		ResaleOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resale_operations_total",
				Help:      "Resale marketplace operations",
			},
			[]string{"operation"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Login attempts by result",
			},
			[]string{"result"},
		),
	}
}

// Deal outcome labels.
const (
	OutcomeCreated      = "created"
	OutcomeUpgraded     = "upgraded"
	OutcomeAlreadyOwned = "already_owned"
	OutcomeRejected     = "rejected"
)

// All recorders are no-ops on a nil receiver so services can run without metrics.

func (m *Metrics) RecordDealOutcome(outcome string) {
	if m == nil {
		return
	}
	m.DealOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRaceRecovery() {
	if m == nil {
		return
	}
	m.RaceRecoveries.Inc()
}

func (m *Metrics) RecordResaleOperation(operation string) {
	if m == nil {
		return
	}
	m.ResaleOperations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordAuthAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.AuthAttempts.WithLabelValues(result).Inc()
}

// Middleware records request count and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
