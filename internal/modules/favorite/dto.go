package favorite

import (
	"theknife/internal/domain"
	"theknife/internal/modules/catalog"
)

// FavoriteListResponse is a page of the user's favorites.
type FavoriteListResponse struct {
	Favorites  []catalog.RestaurantResponse `json:"favorites"`
	Total      int                          `json:"total"`
	Page       int                          `json:"page"`
	PerPage    int                          `json:"per_page"`
	TotalPages int                          `json:"total_pages"`
}

type CheckFavoriteResponse struct {
	RestaurantName string `json:"restaurant_name"`
	IsFavorite     bool   `json:"is_favorite"`
}

// ToFavoriteListResponse slices list to the requested page.
func ToFavoriteListResponse(list []domain.Restaurant, page, perPage int) FavoriteListResponse {
	total := len(list)
	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return FavoriteListResponse{
		Favorites:  catalog.ToRestaurantList(list[start:end]),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
