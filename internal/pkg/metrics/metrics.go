package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "theknife_reviews_created_total",
			Help: "Total number of reviews submitted",
		},
	)

	RepliesAttached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "theknife_replies_attached_total",
			Help: "Total number of owner replies attached to reviews",
		},
	)

	AssociationChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theknife_association_changes_total",
			Help: "Ownership and favorite mutations",
		},
		[]string{"registry", "op"},
	)

	RestaurantsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "theknife_restaurants_registered_total",
			Help: "Restaurants added to the catalog at runtime",
		},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theknife_persist_failures_total",
			Help: "Failed writes of a registry to its backing store",
		},
		[]string{"registry"},
	)

	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theknife_rows_skipped_total",
			Help: "Malformed rows skipped while loading a backing store",
		},
		[]string{"store"},
	)
)
