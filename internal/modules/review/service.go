package review

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
	"theknife/internal/pkg/serial"
)

const minReplyLength = 10

// Service is the review ledger. Reads are served from memory; every change
// rewrites the whole store before it becomes visible.
type Service struct {
	store    Store
	owners   Ownership
	catalog  Catalog
	notifier Notifier
	queue    *serial.Queue
	log      *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	reviews []domain.Review
}

// NewService wires the ledger. notifier may be nil.
func NewService(store Store, owners Ownership, catalog Catalog, notifier Notifier, queue *serial.Queue, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		owners:   owners,
		catalog:  catalog,
		notifier: notifier,
		queue:    queue,
		log:      log.Named("review"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Load(ctx context.Context) error {
	items, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	s.mu.Lock()
	s.reviews = items
	s.mu.Unlock()
	s.log.Info("reviews loaded", zap.Int("count", len(items)))
	return nil
}

// Add stores a fully built review.
func (s *Service) Add(ctx context.Context, rv domain.Review) error {
	if rv.ID == "" || rv.Author == "" || rv.RestaurantName == "" {
		return ErrInvalidRequest
	}
	if rv.Rating < domain.MinRating || rv.Rating > domain.MaxRating {
		return ErrInvalidRequest
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = s.now()
	}
	rv = rv.Clone()

	err := s.queue.Do(ctx, func() error {
		s.mu.RLock()
		for _, existing := range s.reviews {
			if existing.ID == rv.ID {
				s.mu.RUnlock()
				return ErrConflict
			}
		}
		next := make([]domain.Review, len(s.reviews), len(s.reviews)+1)
		copy(next, s.reviews)
		s.mu.RUnlock()

		return s.commit(ctx, append(next, rv))
	})
	if err != nil {
		return err
	}

	metrics.ReviewsCreated.Inc()
	s.notify(EventReviewCreated, rv)
	return nil
}

// Submit builds a review from a customer's form and stores it.
func (s *Service) Submit(ctx context.Context, author string, req CreateReviewRequest) (*domain.Review, error) {
	author = strings.TrimSpace(author)
	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if author == "" || req.RestaurantName == "" || req.Title == "" || req.Body == "" {
		return nil, ErrInvalidRequest
	}
	if s.catalog != nil {
		name, ok := s.catalog.Canonical(req.RestaurantName)
		if !ok {
			return nil, ErrNotFound
		}
		req.RestaurantName = name
	}

	rv := domain.NewReview(author, req.RestaurantName, req.Rating, req.Title, req.Body, s.now())
	if rv.Rating == 0 {
		return nil, ErrInvalidRequest
	}
	if err := s.Add(ctx, *rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// AttachReply sets the reply of the review with reviewID, replacing any
// earlier reply. Unknown ids are reported as ErrNotFound.
func (s *Service) AttachReply(ctx context.Context, reviewID string, reply domain.Reply) (domain.Review, error) {
	return s.attach(ctx, reviewID, reply, nil)
}

// Respond attaches ownerID's reply to a review of one of their restaurants.
// An answered review is only overwritten when replace is set.
func (s *Service) Respond(ctx context.Context, ownerID, reviewID, text string, replace bool) (domain.Review, error) {
	ownerID = strings.TrimSpace(ownerID)
	text = strings.TrimSpace(text)
	if ownerID == "" || reviewID == "" || len([]rune(text)) < minReplyLength {
		return domain.Review{}, ErrInvalidRequest
	}

	reply := domain.NewReply(ownerID, reviewID, text, s.now())
	return s.attach(ctx, reviewID, *reply, func(rv domain.Review) error {
		if !s.owners.IsOwner(ownerID, rv.RestaurantName) {
			return ErrForbidden
		}
		if rv.HasReply() && !replace {
			return ErrConflict
		}
		return nil
	})
}

func (s *Service) attach(ctx context.Context, reviewID string, reply domain.Reply, guard func(domain.Review) error) (domain.Review, error) {
	if reviewID == "" {
		return domain.Review{}, ErrInvalidRequest
	}
	reply.ReviewID = reviewID

	var updated domain.Review
	err := s.queue.Do(ctx, func() error {
		s.mu.RLock()
		idx := s.indexOf(reviewID)
		if idx < 0 {
			s.mu.RUnlock()
			return ErrNotFound
		}
		next := make([]domain.Review, len(s.reviews))
		copy(next, s.reviews)
		s.mu.RUnlock()

		target := next[idx].Clone()
		if guard != nil {
			if err := guard(target); err != nil {
				return err
			}
		}
		if target.HasReply() {
			s.log.Info("replacing reply",
				zap.String("review_id", reviewID), zap.String("previous_reply_id", target.Reply.ID))
		}
		r := reply
		target.Reply = &r
		next[idx] = target

		if err := s.commit(ctx, next); err != nil {
			return err
		}
		updated = target.Clone()
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	metrics.RepliesAttached.Inc()
	s.notify(EventReplyAttached, updated)
	return updated, nil
}

// commit saves next and swaps it in. Runs on the queue.
func (s *Service) commit(ctx context.Context, next []domain.Review) error {
	if err := s.store.Save(ctx, next); err != nil {
		metrics.PersistFailures.WithLabelValues("reviews").Inc()
		s.log.Error("save reviews failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.mu.Lock()
	s.reviews = next
	s.mu.Unlock()
	return nil
}

func (s *Service) notify(event string, rv domain.Review) {
	if s.notifier != nil {
		s.notifier.Notify(event, rv)
	}
}

// indexOf expects s.mu held.
func (s *Service) indexOf(reviewID string) int {
	for i := range s.reviews {
		if s.reviews[i].ID == reviewID {
			return i
		}
	}
	return -1
}

// Get returns the review with id.
func (s *Service) Get(id string) (domain.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.reviews[i].Clone(), true
	}
	return domain.Review{}, false
}

// ReviewsFor lists reviews of restaurantName, newest first.
func (s *Service) ReviewsFor(restaurantName string) []domain.Review {
	return s.filter(func(rv domain.Review) bool { return rv.RestaurantName == restaurantName })
}

// ReviewsBy lists reviews written by userID, newest first.
func (s *Service) ReviewsBy(userID string) []domain.Review {
	return s.filter(func(rv domain.Review) bool { return rv.Author == userID })
}

// ReviewsForOwner lists reviews of every restaurant ownerID manages, newest first.
func (s *Service) ReviewsForOwner(ownerID string) []domain.Review {
	names := s.owners.NamesOf(ownerID)
	if len(names) == 0 {
		return []domain.Review{}
	}
	return s.filter(func(rv domain.Review) bool {
		_, ok := names[rv.RestaurantName]
		return ok
	})
}

// AverageRating is the mean rating of restaurantName, 0 when unreviewed.
func (s *Service) AverageRating(restaurantName string) float64 {
	return domain.AverageRating(s.ReviewsFor(restaurantName))
}

func (s *Service) CountFor(restaurantName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rv := range s.reviews {
		if rv.RestaurantName == restaurantName {
			n++
		}
	}
	return n
}

// All returns a copy of every review in insertion order.
func (s *Service) All() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, len(s.reviews))
	for i, rv := range s.reviews {
		out[i] = rv.Clone()
	}
	return out
}

// StatsFor summarizes userID's activity. favorites is supplied by the caller.
func (s *Service) StatsFor(userID string, favorites int) CustomerStats {
	mine := s.ReviewsBy(userID)
	return CustomerStats{
		ReviewsWritten:     len(mine),
		Favorites:          favorites,
		AverageRatingGiven: domain.AverageRating(mine),
	}
}

func (s *Service) filter(keep func(domain.Review) bool) []domain.Review {
	s.mu.RLock()
	out := make([]domain.Review, 0)
	for _, rv := range s.reviews {
		if keep(rv) {
			out = append(out, rv.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
