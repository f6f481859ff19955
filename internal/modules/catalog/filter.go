package catalog

import (
	"strings"

	"theknife/internal/domain"
)

// Star modes for Filter.Stars.
const (
	StarsOne   = "1"
	StarsTwo   = "2"
	StarsThree = "3"
	StarsGreen = "green"
)

// Filter narrows a catalog search. Zero values match everything.
type Filter struct {
	Text          string  `form:"q"`
	Cuisine       string  `form:"cuisine"`
	Location      string  `form:"location"`
	PriceRange    string  `form:"price"`
	MinStars      float64 `form:"min_stars"`
	Stars         string  `form:"stars"`
	Delivery      bool    `form:"delivery"`
	OnlineBooking bool    `form:"booking"`
}

func (f Filter) normalize() Filter {
	f.Text = strings.ToLower(strings.TrimSpace(f.Text))
	f.Stars = strings.ToLower(strings.TrimSpace(f.Stars))
	return f
}

// Matches expects a normalized filter.
func (f Filter) Matches(r domain.Restaurant) bool {
	if f.Text != "" &&
		!strings.Contains(strings.ToLower(r.Name), f.Text) &&
		!strings.Contains(strings.ToLower(r.Cuisine), f.Text) &&
		!strings.Contains(strings.ToLower(r.Location), f.Text) {
		return false
	}
	if f.Cuisine != "" && r.Cuisine != f.Cuisine {
		return false
	}
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if !r.MatchesPriceRange(f.PriceRange) {
		return false
	}
	if f.MinStars > 0 && !r.MatchesStarRating(f.MinStars) {
		return false
	}
	switch f.Stars {
	case StarsOne:
		if r.Stars() != 1 {
			return false
		}
	case StarsTwo:
		if r.Stars() != 2 {
			return false
		}
	case StarsThree:
		if r.Stars() != 3 {
			return false
		}
	case StarsGreen:
		if !r.HasGreenStar() {
			return false
		}
	}
	if f.Delivery && !r.DeliveryAvailable {
		return false
	}
	if f.OnlineBooking && !r.OnlineBookingAvailable {
		return false
	}
	return true
}
