// Package metrics registers the application's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts successful admin logins.
	LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_logins_total",
		Help: "Successful admin logins.",
	})

	// EnrollmentsConsumed counts tokens converted into student records.
	EnrollmentsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_enrollments_consumed_total",
		Help: "Enrollment tokens successfully consumed.",
	})

	// TokensExpired counts tokens purged past their validity window.
	TokensExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_tokens_expired_total",
		Help: "Enrollment tokens purged after expiry.",
	})

	// CheckinsTotal counts attendance log rows written, by type.
	CheckinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_checkins_total",
		Help: "Attendance log entries written.",
	}, []string{"type"})

	// ExportsTotal counts generated spreadsheet downloads.
	ExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_exports_total",
		Help: "Spreadsheet exports generated.",
	})
)
