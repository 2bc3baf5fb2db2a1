// Package metrics holds the custom Prometheus metrics of the service.
// Request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookclub"

// PrincipalResolutions counts login identifier resolutions.
// Label outcome: admin, user, organizer, not_found, error.
var PrincipalResolutions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "principal_resolutions_total",
		Help:      "Total number of principal resolutions by outcome.",
	},
	[]string{"outcome"},
)

var RolesSeeded = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roles_seeded_total",
		Help:      "Number of role rows inserted by startup seeding.",
	},
)

var EventPublishErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_publish_errors_total",
		Help:      "Domain events that could not be published, by topic.",
	},
	[]string{"topic"},
)
