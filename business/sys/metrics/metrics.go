// Package metrics constructs the prometheus collectors for the signing
// service and provides helpers to record observations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "microblock"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of http requests handled.",
	}, []string{"route", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of http requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Count of panics recovered while handling requests.",
	})
	blocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "blocks_total",
		Help:      "Count of blocks signed by fork.",
	}, []string{"fork"})
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "failures_total",
		Help:      "Count of signing requests that failed by kind.",
	}, []string{"kind"})
	signDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "sign_duration_seconds",
		Help:      "Duration of signing requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// Handler returns the handler that exposes the collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records a handled http request.
func ObserveRequest(route string, statusCode int, started time.Time) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	requestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
}

// AddPanic records a recovered panic.
func AddPanic() {
	panicsTotal.Inc()
}

// ObserveSign records the outcome of a signing request.
func ObserveSign(f fork.Fork, err error, started time.Time) {
	status := "success"
	switch err {
	case nil:
		blocksTotal.WithLabelValues(f.String()).Inc()
	default:
		status = "error"
		failuresTotal.WithLabelValues(fault.KindOf(err).String()).Inc()
	}

	signDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}
