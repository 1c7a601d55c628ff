package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookline_api_requests_total",
			Help: "Total number of requests issued to the event API",
		},
		[]string{"method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hookline_api_request_duration_seconds",
			Help:    "Duration of event API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// statusLabel is "error" when no response came back.
func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}

func observe(method string, code int, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(method, statusLabel(code)).Inc()
	RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
