package favorite

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"theknife/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWT auth. Restaurant names travel in
// the "name" query parameter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/me/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("", h.RemoveFavorite)
		favorites.POST("/toggle", h.ToggleFavorite)
		favorites.GET("/check", h.CheckFavorite)
	}
}

// GetFavorites handles GET /me/favorites?page=&per_page=
func (h *Handler) GetFavorites(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	list := h.service.FavoritesOf(c.GetString("user_id"))
	response.Success(c, http.StatusOK, ToFavoriteListResponse(list, page, perPage))
}

// AddFavorite handles POST /me/favorites?name=
func (h *Handler) AddFavorite(c *gin.Context) {
	name, ok := restaurantName(c)
	if !ok {
		return
	}
	if err := h.service.Add(c.Request.Context(), c.GetString("user_id"), name); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CheckFavoriteResponse{RestaurantName: name, IsFavorite: true})
}

// RemoveFavorite handles DELETE /me/favorites?name=
func (h *Handler) RemoveFavorite(c *gin.Context) {
	name, ok := restaurantName(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), c.GetString("user_id"), name); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, CheckFavoriteResponse{RestaurantName: name, IsFavorite: false})
}

// ToggleFavorite handles POST /me/favorites/toggle?name=
func (h *Handler) ToggleFavorite(c *gin.Context) {
	name, ok := restaurantName(c)
	if !ok {
		return
	}
	member, err := h.service.Toggle(c.Request.Context(), c.GetString("user_id"), name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, CheckFavoriteResponse{RestaurantName: name, IsFavorite: member})
}

// CheckFavorite handles GET /me/favorites/check?name=
func (h *Handler) CheckFavorite(c *gin.Context) {
	name, ok := restaurantName(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, CheckFavoriteResponse{
		RestaurantName: name,
		IsFavorite:     h.service.IsFavorite(c.GetString("user_id"), name),
	})
}

func restaurantName(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return "", false
	}
	return name, true
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "PERSIST_FAILED", "Could not save favorites")
}
