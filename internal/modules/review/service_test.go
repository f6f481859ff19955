package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/pkg/serial"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, reviews []domain.Review) error {
	args := m.Called(ctx, reviews)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(event string, rv domain.Review) {
	m.Called(event, rv)
}

// fakeOwners maps owner id to restaurant names.
type fakeOwners map[string][]string

func (f fakeOwners) NamesOf(ownerID string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, n := range f[ownerID] {
		out[n] = struct{}{}
	}
	return out
}

func (f fakeOwners) IsOwner(ownerID, restaurantName string) bool {
	_, ok := f.NamesOf(ownerID)[restaurantName]
	return ok
}

type fakeCatalog []string

func (f fakeCatalog) Canonical(name string) (string, bool) {
	for _, n := range f {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return n, true
		}
	}
	return "", false
}

var (
	t1 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t2 = t1.Add(time.Hour)
	t3 = t2.Add(time.Hour)
)

func seedReviews() []domain.Review {
	return []domain.Review{
		{ID: "REV_b", Author: "anna", RestaurantName: "Osteria", Rating: 4, Title: "Good", Body: "Nice pasta", CreatedAt: t2},
		{ID: "REV_a", Author: "bob", RestaurantName: "Osteria", Rating: 5, Title: "Great", Body: "Loved it", CreatedAt: t1},
		{ID: "REV_c", Author: "anna", RestaurantName: "Osteria", Rating: 3, Title: "Ok", Body: "Slow", CreatedAt: t3},
		{ID: "REV_d", Author: "carl", RestaurantName: "Sushi Kaito", Rating: 2, Title: "Meh", Body: "Cold rice", CreatedAt: t1},
	}
}

func newTestService(t *testing.T, store *MockStore, notifier Notifier) *Service {
	t.Helper()
	q := serial.NewQueue()
	t.Cleanup(q.Close)
	owners := fakeOwners{"chef": {"Osteria"}, "sushi.chef": {"Sushi Kaito"}}
	catalog := fakeCatalog{"Osteria", "Sushi Kaito", "Empty Place"}
	s := NewService(store, owners, catalog, notifier, q, zap.NewNop())
	s.now = func() time.Time { return t3.Add(time.Hour) }
	require.NoError(t, s.Load(context.Background()))
	return s
}

func loadedStore(reviews []domain.Review) *MockStore {
	store := new(MockStore)
	store.On("Load", mock.Anything).Return(reviews, nil)
	return store
}

func ids(list []domain.Review) []string {
	out := make([]string, 0, len(list))
	for _, rv := range list {
		out = append(out, rv.ID)
	}
	return out
}

func TestService_ReadsAreNewestFirst(t *testing.T) {
	s := newTestService(t, loadedStore(seedReviews()), nil)

	assert.Equal(t, []string{"REV_c", "REV_b", "REV_a"}, ids(s.ReviewsFor("Osteria")))
	assert.Equal(t, []string{"REV_c", "REV_b"}, ids(s.ReviewsBy("anna")))
	assert.Equal(t, []string{"REV_c", "REV_b", "REV_a"}, ids(s.ReviewsForOwner("chef")))
	assert.Empty(t, s.ReviewsForOwner("nobody"))
	assert.Empty(t, s.ReviewsFor("Empty Place"))
	assert.Equal(t, []string{"REV_b", "REV_a", "REV_c", "REV_d"}, ids(s.All()), "All keeps insertion order")
}

func TestService_AverageRating(t *testing.T) {
	s := newTestService(t, loadedStore(seedReviews()), nil)

	assert.InDelta(t, 4.0, s.AverageRating("Osteria"), 1e-9)
	assert.Equal(t, 0.0, s.AverageRating("Empty Place"))
	assert.Equal(t, 3, s.CountFor("Osteria"))
	assert.Zero(t, s.CountFor("Empty Place"))
}

func TestService_StatsFor(t *testing.T) {
	s := newTestService(t, loadedStore(seedReviews()), nil)

	assert.Equal(t, CustomerStats{ReviewsWritten: 2, Favorites: 7, AverageRatingGiven: 3.5}, s.StatsFor("anna", 7))
	assert.Equal(t, CustomerStats{}, s.StatsFor("stranger", 0))
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(list []domain.Review) bool {
		return len(list) == 1 && list[0].ID == "REV_new"
	})).Return(nil).Once()
	notifier := new(MockNotifier)
	notifier.On("Notify", EventReviewCreated, mock.MatchedBy(func(rv domain.Review) bool { return rv.ID == "REV_new" })).Once()

	s := newTestService(t, store, notifier)

	rv := domain.Review{ID: "REV_new", Author: "anna", RestaurantName: "Osteria", Rating: 5}
	require.NoError(t, s.Add(ctx, rv))

	got, ok := s.Get("REV_new")
	require.True(t, ok)
	assert.Equal(t, t3.Add(time.Hour), got.CreatedAt, "missing timestamp is filled in")

	assert.ErrorIs(t, s.Add(ctx, rv), ErrConflict)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_AddValidation(t *testing.T) {
	s := newTestService(t, loadedStore(nil), nil)

	tests := []struct {
		name string
		rv   domain.Review
	}{
		{"no id", domain.Review{Author: "a", RestaurantName: "Osteria", Rating: 3}},
		{"no author", domain.Review{ID: "x", RestaurantName: "Osteria", Rating: 3}},
		{"no restaurant", domain.Review{ID: "x", Author: "a", Rating: 3}},
		{"rating too low", domain.Review{ID: "x", Author: "a", RestaurantName: "Osteria"}},
		{"rating too high", domain.Review{ID: "x", Author: "a", RestaurantName: "Osteria", Rating: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Add(context.Background(), tt.rv), ErrInvalidRequest)
		})
	}
}

func TestService_PersistFailureLeavesLedger(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(seedReviews())
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	notifier := new(MockNotifier)
	s := newTestService(t, store, notifier)

	err := s.Add(ctx, domain.Review{ID: "REV_new", Author: "anna", RestaurantName: "Osteria", Rating: 5})
	assert.ErrorIs(t, err, ErrPersist)
	_, ok := s.Get("REV_new")
	assert.False(t, ok)

	_, err = s.Respond(ctx, "chef", "REV_a", "Thank you for visiting us!", false)
	assert.ErrorIs(t, err, ErrPersist)
	rv, _ := s.Get("REV_a")
	assert.Nil(t, rv.Reply)

	assert.Len(t, s.All(), 4)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	s := newTestService(t, store, nil)

	rv, err := s.Submit(ctx, "anna", CreateReviewRequest{RestaurantName: " Osteria ", Rating: 4, Title: " Good ", Body: "Fresh pasta"})
	require.NoError(t, err)
	assert.Regexp(t, `^REV_\d+_`, rv.ID)
	assert.Equal(t, "Osteria", rv.RestaurantName)
	assert.Equal(t, "Good", rv.Title)
	assert.Equal(t, t3.Add(time.Hour), rv.CreatedAt)
	assert.Equal(t, 1, s.CountFor("Osteria"))

	_, err = s.Submit(ctx, "anna", CreateReviewRequest{RestaurantName: "Nowhere", Rating: 4, Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Submit(ctx, "anna", CreateReviewRequest{RestaurantName: "Osteria", Rating: 9, Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Submit(ctx, "anna", CreateReviewRequest{RestaurantName: "Osteria", Rating: 3, Title: "  ", Body: "b"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Submit(ctx, "", CreateReviewRequest{RestaurantName: "Osteria", Rating: 3, Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestService_SubmitStoresCatalogSpelling(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(seedReviews())
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	s := newTestService(t, store, nil)

	rv, err := s.Submit(ctx, "dora", CreateReviewRequest{RestaurantName: "osteria", Rating: 1, Title: "Bad", Body: "Burnt"})
	require.NoError(t, err)
	assert.Equal(t, "Osteria", rv.RestaurantName)

	assert.Contains(t, ids(s.ReviewsFor("Osteria")), rv.ID)
	assert.Contains(t, ids(s.ReviewsForOwner("chef")), rv.ID)
	assert.Equal(t, 4, s.CountFor("Osteria"))
	assert.InDelta(t, 13.0/4, s.AverageRating("Osteria"), 1e-9)
}

func TestService_AttachReply(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(seedReviews())
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	s := newTestService(t, store, nil)

	_, err := s.AttachReply(ctx, "REV_missing", domain.Reply{ID: "RESP_1", Author: "chef", Text: "Thanks"})
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.AttachReply(ctx, "REV_a", domain.Reply{ID: "RESP_1", Author: "chef", Text: "Thanks"})
	require.NoError(t, err)
	require.NotNil(t, first.Reply)
	assert.Equal(t, "REV_a", first.Reply.ReviewID)

	second, err := s.AttachReply(ctx, "REV_a", domain.Reply{ID: "RESP_2", Author: "chef", Text: "Thanks again"})
	require.NoError(t, err)
	assert.Equal(t, "RESP_2", second.Reply.ID, "a later reply replaces the earlier one")

	second.Reply.Text = "mutated"
	stored, _ := s.Get("REV_a")
	assert.Equal(t, "Thanks again", stored.Reply.Text, "callers get copies")
}

func TestService_Respond(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(seedReviews())
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	notifier := new(MockNotifier)
	notifier.On("Notify", EventReplyAttached, mock.Anything)
	s := newTestService(t, store, notifier)

	_, err := s.Respond(ctx, "chef", "REV_a", "Too short", false)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Respond(ctx, "sushi.chef", "REV_a", "Not my restaurant at all.", false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Respond(ctx, "chef", "REV_zzz", "Thank you for the visit.", false)
	assert.ErrorIs(t, err, ErrNotFound)

	rv, err := s.Respond(ctx, "chef", "REV_a", "Thank you for the visit.", false)
	require.NoError(t, err)
	require.NotNil(t, rv.Reply)
	assert.Equal(t, "chef", rv.Reply.Author)
	assert.Regexp(t, `^RESP_\d+_`, rv.Reply.ID)

	_, err = s.Respond(ctx, "chef", "REV_a", "A second answer to the same review.", false)
	assert.ErrorIs(t, err, ErrConflict)

	rv, err = s.Respond(ctx, "chef", "REV_a", "A corrected answer to the review.", true)
	require.NoError(t, err)
	assert.Equal(t, "A corrected answer to the review.", rv.Reply.Text)

	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestService_LoadError(t *testing.T) {
	store := new(MockStore)
	store.On("Load", mock.Anything).Return(nil, errors.New("corrupt"))
	q := serial.NewQueue()
	defer q.Close()
	s := NewService(store, fakeOwners{}, nil, nil, q, zap.NewNop())

	assert.Error(t, s.Load(context.Background()))
}
