package owner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/modules/catalog"
	"theknife/internal/pkg/assoc"
	"theknife/internal/pkg/metrics"
	"theknife/internal/pkg/utils"
	"theknife/internal/pkg/validator"
)

const (
	defaultFacilities = "Standard restaurant services"
	greenStarYes      = "1"
	greenStarNo       = "N/A"
)

// Service is the ownership registry: owner id -> names of managed restaurants.
type Service struct {
	reg     *assoc.Registry
	catalog Catalog
	log     *zap.Logger
}

func NewService(reg *assoc.Registry, catalog Catalog, log *zap.Logger) *Service {
	return &Service{reg: reg, catalog: catalog, log: log.Named("owner")}
}

func (s *Service) Load(ctx context.Context) error {
	return s.reg.Load(ctx)
}

// Add records that ownerID manages restaurantName. Adding twice is a no-op.
func (s *Service) Add(ctx context.Context, ownerID, restaurantName string) error {
	if ownerID == "" || restaurantName == "" {
		return ErrInvalidRequest
	}
	_, err := s.reg.Add(ctx, ownerID, restaurantName)
	return mapRegistryErr(err)
}

// Remove drops the association; the owner disappears with their last restaurant.
func (s *Service) Remove(ctx context.Context, ownerID, restaurantName string) error {
	if ownerID == "" || restaurantName == "" {
		return ErrInvalidRequest
	}
	_, err := s.reg.Remove(ctx, ownerID, restaurantName)
	return mapRegistryErr(err)
}

// Claim makes ownerID the sole owner of a catalog restaurant and returns the
// name as the catalog spells it. A restaurant held by someone else is a conflict.
func (s *Service) Claim(ctx context.Context, ownerID, restaurantName string) (string, error) {
	restaurantName = strings.TrimSpace(restaurantName)
	if ownerID == "" || restaurantName == "" {
		return "", ErrInvalidRequest
	}
	name, ok := s.catalog.Canonical(restaurantName)
	if !ok {
		return "", ErrNotFound
	}
	if _, err := s.reg.AddExclusive(ctx, ownerID, name); err != nil {
		if errors.Is(err, assoc.ErrHeld) {
			return "", ErrConflict
		}
		return "", mapRegistryErr(err)
	}
	return name, nil
}

func (s *Service) IsOwner(ownerID, restaurantName string) bool {
	return s.reg.Contains(ownerID, restaurantName)
}

// RestaurantsOf resolves the owner's names against the catalog. Names the
// catalog does not know are left out.
func (s *Service) RestaurantsOf(ownerID string) []domain.Restaurant {
	return s.catalog.Resolve(s.reg.Names(ownerID))
}

func (s *Service) NamesOf(ownerID string) map[string]struct{} {
	return s.reg.Names(ownerID)
}

// OwnerOf returns the owner of restaurantName. If several owners claim it the
// lexically first wins and the clash is logged.
func (s *Service) OwnerOf(restaurantName string) (string, bool) {
	owners := s.reg.KeysOf(restaurantName)
	if len(owners) == 0 {
		return "", false
	}
	if len(owners) > 1 {
		s.log.Warn("restaurant claimed by several owners",
			zap.String("restaurant", restaurantName), zap.Strings("owners", owners))
	}
	return owners[0], true
}

func (s *Service) Count(ownerID string) int {
	return s.reg.Count(ownerID)
}

func (s *Service) Owners() []string {
	return s.reg.Keys()
}

// RegisterRestaurant adds a new listing to the catalog and makes ownerID its owner.
func (s *Service) RegisterRestaurant(ctx context.Context, ownerID string, req RegisterRestaurantRequest) (*domain.Restaurant, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if ownerID == "" {
		return nil, ErrInvalidRequest
	}
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, errs)
	}
	if s.catalog.ExistsByName(req.Name) {
		return nil, ErrConflict
	}

	r := newRestaurant(ownerID, req)
	if err := s.catalog.Append(ctx, r); err != nil {
		switch {
		case errors.Is(err, catalog.ErrConflict):
			return nil, ErrConflict
		case errors.Is(err, catalog.ErrInvalidRequest):
			return nil, ErrInvalidRequest
		}
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if _, err := s.Claim(ctx, ownerID, r.Name); err != nil {
		s.log.Error("restaurant added but ownership not recorded",
			zap.String("restaurant", r.Name), zap.String("owner", ownerID), zap.Error(err))
		return nil, err
	}

	metrics.RestaurantsRegistered.Inc()
	s.log.Info("restaurant registered", zap.String("restaurant", r.Name), zap.String("owner", ownerID))
	return &r, nil
}

func newRestaurant(ownerID string, req RegisterRestaurantRequest) domain.Restaurant {
	facilities := strings.TrimSpace(req.FacilitiesAndServices)
	if facilities == "" {
		facilities = defaultFacilities
	}
	green := greenStarNo
	if req.GreenStar {
		green = greenStarYes
	}
	owner := ownerID
	return domain.Restaurant{
		Name:                   req.Name,
		Address:                strings.TrimSpace(req.Address),
		Location:               strings.TrimSpace(req.Location),
		Price:                  req.Price,
		Cuisine:                strings.TrimSpace(req.Cuisine),
		Longitude:              req.Longitude,
		Latitude:               req.Latitude,
		PhoneNumber:            strings.TrimSpace(req.PhoneNumber),
		URL:                    utils.GuideURL(req.Name, req.Location),
		WebsiteURL:             strings.TrimSpace(req.WebsiteURL),
		Award:                  strings.TrimSpace(req.Award),
		GreenStar:              green,
		FacilitiesAndServices:  facilities,
		Description:            req.Description,
		DeliveryAvailable:      req.DeliveryAvailable,
		OnlineBookingAvailable: req.OnlineBookingAvailable,
		Owner:                  &owner,
	}
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
