package review

import (
	"context"

	"theknife/internal/domain"
)

type Store interface {
	Load(ctx context.Context) ([]domain.Review, error)
	Save(ctx context.Context, reviews []domain.Review) error
}

// Ownership resolves which restaurants an owner manages.
type Ownership interface {
	NamesOf(ownerID string) map[string]struct{}
	IsOwner(ownerID, restaurantName string) bool
}

// Catalog maps a user-typed restaurant name to its stored spelling.
type Catalog interface {
	Canonical(name string) (string, bool)
}

// Notifier is told about new reviews and replies after they are saved.
type Notifier interface {
	Notify(event string, rv domain.Review)
}

const (
	EventReviewCreated = "review.created"
	EventReplyAttached = "review.replied"
)
