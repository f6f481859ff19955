package catalog

import "theknife/internal/domain"

type Facets struct {
	Cuisines    []string `json:"cuisines"`
	Locations   []string `json:"locations"`
	PriceRanges []string `json:"price_ranges"`
}

// Summary is the headline count block shown above search results.
type Summary struct {
	Total           int `json:"total"`
	MichelinStarred int `json:"michelin_starred"`
	GreenStarred    int `json:"green_starred"`
	Favorites       int `json:"favorites"`
}

type SearchResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
	Summary     Summary              `json:"summary"`
}

// RestaurantResponse adds derived fields to the stored record.
type RestaurantResponse struct {
	domain.Restaurant
	Stars         int      `json:"stars"`
	HasGreenStar  bool     `json:"has_green_star"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	IsFavorite    *bool    `json:"is_favorite,omitempty"`
}

func ToRestaurantResponse(r domain.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		Restaurant:   r,
		Stars:        r.Stars(),
		HasGreenStar: r.HasGreenStar(),
	}
}

func ToRestaurantList(list []domain.Restaurant) []RestaurantResponse {
	out := make([]RestaurantResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ToRestaurantResponse(r))
	}
	return out
}
