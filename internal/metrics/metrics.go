package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a counter of requests rejected by throttling.
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a counter of retry attempts performed by gateways.
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// NewOrderApprovalsTotal counts approval attempts by result
// (approved, not_found, state_conflict, invalid, error).
func NewOrderApprovalsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_approvals_total",
		Help: "Total number of order approval attempts by result",
	}, []string{"result"})
}

// NewNotificationsTotal counts notification deliveries by kind (user, broadcast)
// and result (sent, failed).
func NewNotificationsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Total number of notification deliveries by kind and result",
	}, []string{"kind", "result"})
}

// NewNotificationsDeadLetteredTotal counts notifications parked for redelivery.
func NewNotificationsDeadLetteredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_dead_lettered_total",
		Help: "Total number of notifications moved to the dead-letter store",
	})
}

// NewVerificationCodesIssuedTotal counts issued codes by account kind.
func NewVerificationCodesIssuedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_codes_issued_total",
		Help: "Total number of verification codes issued by account kind",
	}, []string{"kind"})
}
