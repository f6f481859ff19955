package favorite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/pkg/assoc"
)

// Service is the favorites registry: user id -> favorite restaurant names.
type Service struct {
	reg     *assoc.Registry
	catalog Catalog
	log     *zap.Logger
}

func NewService(reg *assoc.Registry, catalog Catalog, log *zap.Logger) *Service {
	return &Service{reg: reg, catalog: catalog, log: log.Named("favorite")}
}

func (s *Service) Load(ctx context.Context) error {
	return s.reg.Load(ctx)
}

// Add marks restaurantName as a favorite of userID. Re-adding is a no-op.
func (s *Service) Add(ctx context.Context, userID, restaurantName string) error {
	userID, restaurantName, err := s.clean(userID, restaurantName)
	if err != nil {
		return err
	}
	_, err = s.reg.Add(ctx, userID, restaurantName)
	return mapRegistryErr(err)
}

// Remove unmarks a favorite. Removing a non-favorite is a no-op.
func (s *Service) Remove(ctx context.Context, userID, restaurantName string) error {
	userID, restaurantName, err := s.clean(userID, restaurantName)
	if err != nil {
		return err
	}
	_, err = s.reg.Remove(ctx, userID, restaurantName)
	return mapRegistryErr(err)
}

// Toggle flips the favorite and returns whether it is now set.
func (s *Service) Toggle(ctx context.Context, userID, restaurantName string) (bool, error) {
	userID, restaurantName, err := s.clean(userID, restaurantName)
	if err != nil {
		return false, err
	}
	member, err := s.reg.Toggle(ctx, userID, restaurantName)
	return member, mapRegistryErr(err)
}

func (s *Service) IsFavorite(userID, restaurantName string) bool {
	return s.reg.Contains(userID, restaurantName)
}

// FavoritesOf resolves the user's favorites in catalog order. Names missing
// from the catalog are dropped.
func (s *Service) FavoritesOf(userID string) []domain.Restaurant {
	return s.catalog.Resolve(s.reg.Names(userID))
}

func (s *Service) NamesOf(userID string) map[string]struct{} {
	return s.reg.Names(userID)
}

func (s *Service) Count(userID string) int {
	return s.reg.Count(userID)
}

// clean trims both ids and swaps a known restaurant for its catalog spelling.
// Unknown names pass through so stale favorites can still be removed.
func (s *Service) clean(userID, restaurantName string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	restaurantName = strings.TrimSpace(restaurantName)
	if userID == "" || restaurantName == "" {
		return "", "", ErrInvalidRequest
	}
	if name, ok := s.catalog.Canonical(restaurantName); ok {
		restaurantName = name
	}
	return userID, restaurantName, nil
}

func mapRegistryErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, assoc.ErrPersist) {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return err
}
