// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agrimeme/backend/internal/apperrors"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	commentOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comment_operations_total",
		Help: "Comment writes by operation and outcome.",
	}, []string{"op", "outcome"})
)

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCommentOp counts a comment write. outcome is "ok", the error kind
// for API errors, or "error".
func ObserveCommentOp(op string, err error) {
	commentOps.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperrors.KindNotFound:
			return "not_found"
		case apperrors.KindBadRequest:
			return "bad_request"
		case apperrors.KindUnauthenticated:
			return "unauthenticated"
		case apperrors.KindForbidden:
			return "forbidden"
		case apperrors.KindConflict:
			return "conflict"
		}
	}
	return "error"
}
