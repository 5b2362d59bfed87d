package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"service-shop-delivery/internal/http/middleware"
	"service-shop-delivery/internal/metrics"
)

// Metrics groups every collector of the process around one registry.
type Metrics struct {
	Registry          *prometheus.Registry
	HTTP              *middleware.HTTPMetrics
	RateLimitExceeded prometheus.Counter
	GatewayRetries    prometheus.Counter
	OrderApprovals    *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	DeadLettered      prometheus.Counter
	CodesIssued       *prometheus.CounterVec
}

func newMetrics() (*Metrics, error) {
	m := &Metrics{
		Registry:          prometheus.NewRegistry(),
		HTTP:              middleware.NewHTTPMetrics(),
		RateLimitExceeded: metrics.NewRateLimitExceededTotal(),
		GatewayRetries:    metrics.NewGatewayRetriesTotal(),
		OrderApprovals:    metrics.NewOrderApprovalsTotal(),
		Notifications:     metrics.NewNotificationsTotal(),
		DeadLettered:      metrics.NewNotificationsDeadLetteredTotal(),
		CodesIssued:       metrics.NewVerificationCodesIssuedTotal(),
	}

	cs := append(m.HTTP.Collectors(),
		m.RateLimitExceeded,
		m.GatewayRetries,
		m.OrderApprovals,
		m.Notifications,
		m.DeadLettered,
		m.CodesIssued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range cs {
		if err := m.Registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}
