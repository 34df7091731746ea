// Package metrics defines and registers all custom Prometheus metrics for the
// adoption API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough; /metrics exposes them next to the HTTP
// metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adoptafacil"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: "ADMIN", "CLIENT" or "PARTNER"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered identities, by role.",
	},
	[]string{"role"},
)

// PermissionDeniedTotal counts requests rejected by ownership or role checks.
// Label:
//   - route: the matched route template (e.g. "/api/mascotas/:id")
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests denied by the authorization policy, by route.",
	},
	[]string{"route"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// PetsCreatedTotal counts newly created adoption listings.
var PetsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pets_created_total",
		Help:      "Total number of adoption listings created.",
	},
)

// ImagesStoredTotal counts image files written to the image store.
// Label:
//   - driver: "local" or "s3"
var ImagesStoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_stored_total",
		Help:      "Total number of image files written, by storage driver.",
	},
	[]string{"driver"},
)

// ImagesDeletedTotal counts image deletions, labelled by outcome. A "failure"
// leaves an orphaned file behind.
// Labels:
//   - driver: "local" or "s3"
//   - result: "success" or "failure"
var ImagesDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_deleted_total",
		Help:      "Total number of image file deletions, by storage driver and result.",
	},
	[]string{"driver", "result"},
)

// ── Donation metrics ──────────────────────────────────────────────────────────

// DonationsTotal counts recorded donations.
// Label:
//   - replayed: "true" when an Idempotency-Key matched an earlier donation
var DonationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_total",
		Help:      "Total number of donation create requests served, by replay flag.",
	},
	[]string{"replayed"},
)
