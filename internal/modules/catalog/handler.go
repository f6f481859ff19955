package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"theknife/internal/pkg/response"
)

type Handler struct {
	service   *Service
	ratings   RatingSource
	owners    OwnerLookup
	favorites FavoriteLookup
}

func NewHandler(service *Service, ratings RatingSource, owners OwnerLookup, favorites FavoriteLookup) *Handler {
	return &Handler{
		service:   service,
		ratings:   ratings,
		owners:    owners,
		favorites: favorites,
	}
}

// RegisterRoutes mounts the public catalog endpoints. The group may carry
// optional auth; a user id in context enables favorite counts.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	restaurants := rg.Group("/restaurants")
	{
		restaurants.GET("", h.Search)
		restaurants.GET("/facets", h.Facets)
		restaurants.GET("/lookup", h.GetByName)
	}
}

// Search handles GET /restaurants with filters
func (h *Handler) Search(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid search filters")
		return
	}

	list := h.service.Search(f)

	var isFavorite func(string) bool
	if userID := c.GetString("user_id"); userID != "" && h.favorites != nil {
		isFavorite = func(name string) bool { return h.favorites.IsFavorite(userID, name) }
	}

	response.Success(c, http.StatusOK, SearchResponse{
		Restaurants: ToRestaurantList(list),
		Summary:     Summarize(list, isFavorite),
	})
}

// Facets handles GET /restaurants/facets
func (h *Handler) Facets(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Facets())
}

// GetByName handles GET /restaurants/lookup?name=
func (h *Handler) GetByName(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	r, ok := h.service.FindByName(name)
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	if h.owners != nil {
		if owner, ok := h.owners.OwnerOf(r.Name); ok {
			r.Owner = &owner
		}
	}

	resp := ToRestaurantResponse(r)
	if h.ratings != nil {
		avg := h.ratings.AverageRating(r.Name)
		count := h.ratings.CountFor(r.Name)
		resp.AverageRating = &avg
		resp.ReviewCount = &count
	}
	if userID := c.GetString("user_id"); userID != "" && h.favorites != nil {
		fav := h.favorites.IsFavorite(userID, r.Name)
		resp.IsFavorite = &fav
	}

	response.Success(c, http.StatusOK, resp)
}
