package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
	"theknife/internal/pkg/serial"
)

// Service is the in-memory restaurant catalog. It owns every Restaurant value;
// other registries refer to restaurants by name only.
type Service struct {
	store Store
	queue *serial.Queue
	log   *zap.Logger

	mu      sync.RWMutex
	items   []domain.Restaurant
	pending map[string]struct{} // lower-cased names with an append in flight
}

func NewService(store Store, queue *serial.Queue, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		queue:   queue,
		log:     log.Named("catalog"),
		pending: make(map[string]struct{}),
	}
}

// Load replaces the in-memory catalog with the store's contents.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.log.Info("catalog ready", zap.Int("restaurants", len(items)))
	return nil
}

// Append records r durably and then adds it to memory. A name already in the
// catalog (case-insensitive) is rejected with ErrConflict; a failed write leaves
// the catalog unchanged.
func (s *Service) Append(ctx context.Context, r domain.Restaurant) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrInvalidRequest
	}
	key := strings.ToLower(r.Name)

	return s.queue.Do(ctx, func() error {
		s.mu.Lock()
		if s.existsLocked(key) {
			s.mu.Unlock()
			return ErrConflict
		}
		s.pending[key] = struct{}{}
		s.mu.Unlock()

		err := s.store.Append(ctx, r)

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, key)
		if err != nil {
			metrics.PersistFailures.WithLabelValues("catalog").Inc()
			s.log.Error("append restaurant failed", zap.String("name", r.Name), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		s.items = append(s.items, r)
		return nil
	})
}

// ExistsByName is a case-insensitive exact match over the catalog and any
// append still in flight.
func (s *Service) ExistsByName(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.existsLocked(key)
}

func (s *Service) existsLocked(key string) bool {
	if _, ok := s.pending[key]; ok {
		return true
	}
	for _, r := range s.items {
		if strings.ToLower(r.Name) == key {
			return true
		}
	}
	return false
}

// Canonical maps a case-insensitive name to the spelling stored in the
// catalog. Registries and reviews key on the returned form.
func (s *Service) Canonical(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if strings.ToLower(r.Name) == key {
			return r.Name, true
		}
	}
	return "", false
}

// FindByName returns the first restaurant whose name matches exactly.
func (s *Service) FindByName(name string) (domain.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if r.Name == name {
			return r, true
		}
	}
	return domain.Restaurant{}, false
}

// All returns a copy of the catalog in load order.
func (s *Service) All() []domain.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Restaurant(nil), s.items...)
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Resolve returns the restaurants whose names are in names, in catalog order.
// Names without a catalog entry are dropped.
func (s *Service) Resolve(names map[string]struct{}) []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(names))
	if len(names) == 0 {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if _, ok := names[r.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Search applies every non-zero field of f.
func (s *Service) Search(f Filter) []domain.Restaurant {
	f = f.normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Restaurant, 0)
	for _, r := range s.items {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Facets lists the distinct non-blank cuisines, locations and price tiers.
func (s *Service) Facets() Facets {
	cuisines := map[string]struct{}{}
	locations := map[string]struct{}{}
	prices := map[string]struct{}{}

	s.mu.RLock()
	for _, r := range s.items {
		addNonBlank(cuisines, r.Cuisine)
		addNonBlank(locations, r.Location)
		addNonBlank(prices, r.Price)
	}
	s.mu.RUnlock()

	return Facets{
		Cuisines:    sortedKeys(cuisines),
		Locations:   sortedKeys(locations),
		PriceRanges: sortedKeys(prices),
	}
}

// Summarize counts starred, green-starred and favorite restaurants in list.
// isFavorite may be nil.
func Summarize(list []domain.Restaurant, isFavorite func(name string) bool) Summary {
	sum := Summary{Total: len(list)}
	for _, r := range list {
		if r.HasMichelinStar() {
			sum.MichelinStarred++
		}
		if r.HasGreenStar() {
			sum.GreenStarred++
		}
		if isFavorite != nil && isFavorite(r.Name) {
			sum.Favorites++
		}
	}
	return sum
}

func addNonBlank(set map[string]struct{}, v string) {
	if strings.TrimSpace(v) != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
