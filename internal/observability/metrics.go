package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated        = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "rides_created_total", Help: "Rides posted by drivers"})
	TripRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "trip_requests_created_total", Help: "Trip requests posted by riders"})
	OffersCreated       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "offers_created_total", Help: "Offers made by drivers"})
	OffersAccepted      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "offers_accepted_total", Help: "Offers accepted by riders"})
	OffersCancelled     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "offers_cancelled_total", Help: "Offers cancelled, including losers swept on acceptance"})
	BookingsCreated     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "bookings_created_total", Help: "Bookings confirmed across both flows"})
	BookingsCancelled   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "bookings_cancelled_total", Help: "Bookings cancelled"})

	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "seat_conflicts_total", Help: "Seat reservations refused by the conditional decrement"})

	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "idempotent_replays_total", Help: "Create requests answered from the idempotency ledger"})
	// IdempotencyCorruptRecords counts ledger rows whose entity was missing.
	// Records and entities commit in one transaction, so any increment here
	// means the write sequencing needs an audit.
	IdempotencyCorruptRecords = promauto.NewCounter(prometheus.CounterOpts{Namespace: "campusride", Name: "idempotency_corrupt_records_total", Help: "Corrupt idempotency records deleted during lookup"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
