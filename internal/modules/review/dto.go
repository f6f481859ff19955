package review

import "theknife/internal/domain"

type CreateReviewRequest struct {
	RestaurantName string `json:"restaurant_name" validate:"required"`
	Rating         int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title          string `json:"title" validate:"required,max=200"`
	Body           string `json:"body" validate:"required"`
}

type OwnerReplyRequest struct {
	Text string `json:"text" validate:"required,min=10"`
}

// CustomerStats backs the customer dashboard.
type CustomerStats struct {
	ReviewsWritten     int     `json:"reviews_written"`
	Favorites          int     `json:"favorites"`
	AverageRatingGiven float64 `json:"average_rating_given"`
}

type RestaurantReviewsResponse struct {
	RestaurantName string          `json:"restaurant_name"`
	AverageRating  float64         `json:"average_rating"`
	Count          int             `json:"count"`
	Reviews        []domain.Review `json:"reviews"`
}
