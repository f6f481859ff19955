package catalog

import (
	"context"

	"theknife/internal/domain"
)

// Store is the durable side of the catalog: read once, append-only afterwards.
type Store interface {
	Load(ctx context.Context) ([]domain.Restaurant, error)
	Append(ctx context.Context, r domain.Restaurant) error
}

// RatingSource supplies review aggregates for restaurant details.
type RatingSource interface {
	AverageRating(restaurantName string) float64
	CountFor(restaurantName string) int
}

type OwnerLookup interface {
	OwnerOf(restaurantName string) (string, bool)
}

type FavoriteLookup interface {
	IsFavorite(userID, restaurantName string) bool
}
