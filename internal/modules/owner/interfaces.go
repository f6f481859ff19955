package owner

import (
	"context"

	"theknife/internal/domain"
)

// Catalog is the part of the restaurant catalog the ownership registry needs.
type Catalog interface {
	Resolve(names map[string]struct{}) []domain.Restaurant
	ExistsByName(name string) bool
	Canonical(name string) (string, bool)
	Append(ctx context.Context, r domain.Restaurant) error
}

// ReviewSource feeds the owner dashboard.
type ReviewSource interface {
	ReviewsForOwner(ownerID string) []domain.Review
}
