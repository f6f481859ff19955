package favorite

import "theknife/internal/domain"

// Catalog resolves favorite names to listings.
type Catalog interface {
	Resolve(names map[string]struct{}) []domain.Restaurant
	Canonical(name string) (string, bool)
}
