// Package metrics holds the domain counters exported on /metrics next to the
// HTTP metrics of the middleware package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads stored, by kind",
		},
		[]string{"kind"},
	)

	adminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func LeadCreated(kind string) {
	leadsCreated.WithLabelValues(kind).Inc()
}

func Login(outcome string) {
	adminLogins.WithLabelValues(outcome).Inc()
}

func IntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
