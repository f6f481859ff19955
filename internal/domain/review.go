package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a restaurant, optionally answered by its owner.
type Review struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	RestaurantName string    `json:"restaurant_name"`
	Rating         int       `json:"rating"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	Reply          *Reply    `json:"reply,omitempty"`
}

// Reply is an owner's answer to a review.
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	ReviewID  string    `json:"review_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview builds a review with a fresh id. An out-of-range rating leaves
// the rating at zero.
func NewReview(author, restaurantName string, rating int, title, body string, now time.Time) *Review {
	r := &Review{
		ID:             NewID("REV", now),
		Author:         author,
		RestaurantName: restaurantName,
		Title:          title,
		Body:           body,
		CreatedAt:      now,
	}
	r.SetRating(rating)
	return r
}

// SetRating assigns v when it is within [MinRating, MaxRating] and reports
// whether it did.
func (r *Review) SetRating(v int) bool {
	if v < MinRating || v > MaxRating {
		return false
	}
	r.Rating = v
	return true
}

func (r *Review) HasReply() bool {
	return r.Reply != nil
}

// Clone returns a copy that shares no pointers with r.
func (r Review) Clone() Review {
	if r.Reply != nil {
		reply := *r.Reply
		r.Reply = &reply
	}
	return r
}

func NewReply(author, reviewID, text string, now time.Time) *Reply {
	return &Reply{
		ID:        NewID("RESP", now),
		Author:    author,
		ReviewID:  reviewID,
		Text:      text,
		CreatedAt: now,
	}
}

// NewID returns "<prefix>_<unix millis>_<random>".
func NewID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), uuid.NewString())
}

// AverageRating returns the mean rating, or 0 for an empty slice.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
