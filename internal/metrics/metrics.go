package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkhub_http_request_duration_seconds",
		Help:    "Time from request receipt to response, by route pattern and status.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route", "status"})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkhub_auth_failures_total",
		Help: "Bearer authentication failures by reason.",
	}, []string{"reason"})

	AccountOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkhub_account_operations_total",
		Help: "Account operations (register, login, external_login) by result.",
	}, []string{"op", "result"})

	LinkOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkhub_link_operations_total",
		Help: "Link operations (create, get, list, update, delete) by result.",
	}, []string{"op", "result"})

	PasswordHashDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkhub_password_hash_duration_seconds",
		Help:    "Time spent deriving or verifying an argon2id password hash.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

var LinksActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "linkhub_links_active",
	Help: "Number of links that are not soft-deleted.",
})
