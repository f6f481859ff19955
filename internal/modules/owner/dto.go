package owner

import "theknife/internal/domain"

// RegisterRestaurantRequest is the owner's "add restaurant" form.
type RegisterRestaurantRequest struct {
	Name                   string  `json:"name" validate:"required,max=200"`
	Address                string  `json:"address" validate:"required"`
	Location               string  `json:"location" validate:"required"`
	Price                  string  `json:"price" validate:"required,oneof=€ €€ €€€ €€€€"`
	Cuisine                string  `json:"cuisine" validate:"required"`
	Longitude              float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude               float64 `json:"latitude" validate:"gte=-90,lte=90"`
	PhoneNumber            string  `json:"phone_number" validate:"required"`
	WebsiteURL             string  `json:"website_url" validate:"omitempty,url"`
	Award                  string  `json:"award"`
	GreenStar              bool    `json:"green_star"`
	FacilitiesAndServices  string  `json:"facilities_and_services"`
	Description            string  `json:"description" validate:"required,min=50"`
	DeliveryAvailable      bool    `json:"delivery_available"`
	OnlineBookingAvailable bool    `json:"online_booking_available"`
}

type RestaurantNameRequest struct {
	RestaurantName string `json:"restaurant_name" validate:"required"`
}

// Dashboard is the owner's overview across all their restaurants.
type Dashboard struct {
	Restaurants   int     `json:"restaurants"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	AwaitingReply int     `json:"awaiting_reply"`
}

func BuildDashboard(restaurants int, reviews []domain.Review) Dashboard {
	d := Dashboard{
		Restaurants:   restaurants,
		TotalReviews:  len(reviews),
		AverageRating: domain.AverageRating(reviews),
	}
	for _, r := range reviews {
		if !r.HasReply() {
			d.AwaitingReply++
		}
	}
	return d
}
