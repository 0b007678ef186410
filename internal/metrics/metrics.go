package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the security core. A nil
// *Metrics is valid and records nothing, which keeps service tests free of
// registry bookkeeping.
type Metrics struct {
	loginAttempts     *prometheus.CounterVec
	rateLimitDenials  *prometheus.CounterVec
	usersCreated      prometheus.Counter
	cleanupRowsSwept  *prometheus.CounterVec
	activeBlockGauges *prometheus.GaugeVec
}

// New registers the gatehouse instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		rateLimitDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_rate_limit_denials_total",
			Help: "Attempts denied by the rate limiter, by action type.",
		}, []string{"action_type"}),
		usersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_users_created_total",
			Help: "Accounts created through registration.",
		}),
		cleanupRowsSwept: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_cleanup_rows_swept_total",
			Help: "Rows removed by background cleanup, by sweep.",
		}, []string{"sweep"}),
		activeBlockGauges: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gatehouse_rate_limit_active_blocks",
			Help: "Identifier pairs currently blocked, by action type.",
		}, []string{"action_type"}),
	}
}

func (m *Metrics) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRateLimitDenial(actionType string) {
	if m == nil {
		return
	}
	m.rateLimitDenials.WithLabelValues(actionType).Inc()
}

func (m *Metrics) RecordUserCreated() {
	if m == nil {
		return
	}
	m.usersCreated.Inc()
}

func (m *Metrics) RecordCleanupSweep(sweep string, rows int64) {
	if m == nil {
		return
	}
	m.cleanupRowsSwept.WithLabelValues(sweep).Add(float64(rows))
}

func (m *Metrics) SetActiveBlocks(actionType string, count int) {
	if m == nil {
		return
	}
	m.activeBlockGauges.WithLabelValues(actionType).Set(float64(count))
}
