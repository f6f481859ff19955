package owner

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"theknife/internal/modules/catalog"
	"theknife/internal/pkg/response"
	"theknife/internal/pkg/validator"
)

type Handler struct {
	service *Service
	reviews ReviewSource
}

func NewHandler(service *Service, reviews ReviewSource) *Handler {
	return &Handler{service: service, reviews: reviews}
}

// RegisterRoutes expects rg to be behind JWT auth and the owner role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/restaurants", h.RegisterRestaurant)

	me := rg.Group("/me")
	{
		me.GET("/restaurants", h.MyRestaurants)
		me.POST("/restaurants/claim", h.Claim)
		me.POST("/restaurants/release", h.Release)
		me.GET("/dashboard", h.Dashboard)
	}
}

// RegisterRestaurant handles POST /restaurants
func (h *Handler) RegisterRestaurant(c *gin.Context) {
	ownerID := c.GetString("user_id")

	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant data", errs)
		return
	}

	r, err := h.service.RegisterRestaurant(c.Request.Context(), ownerID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, catalog.ToRestaurantResponse(*r))
}

// MyRestaurants handles GET /me/restaurants
func (h *Handler) MyRestaurants(c *gin.Context) {
	list := h.service.RestaurantsOf(c.GetString("user_id"))
	response.Success(c, http.StatusOK, gin.H{
		"restaurants": catalog.ToRestaurantList(list),
		"count":       len(list),
	})
}

// Claim handles POST /me/restaurants/claim
func (h *Handler) Claim(c *gin.Context) {
	var req RestaurantNameRequest
	if !bindName(c, &req) {
		return
	}
	name, err := h.service.Claim(c.Request.Context(), c.GetString("user_id"), req.RestaurantName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"restaurant_name": name, "owned": true})
}

// Release handles POST /me/restaurants/release
func (h *Handler) Release(c *gin.Context) {
	var req RestaurantNameRequest
	if !bindName(c, &req) {
		return
	}
	if err := h.service.Remove(c.Request.Context(), c.GetString("user_id"), req.RestaurantName); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"restaurant_name": req.RestaurantName, "owned": false})
}

// Dashboard handles GET /me/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	ownerID := c.GetString("user_id")
	response.Success(c, http.StatusOK, BuildDashboard(h.service.Count(ownerID), h.reviews.ReviewsForOwner(ownerID)))
}

func bindName(c *gin.Context, req *RestaurantNameRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_name is required", errs)
		return false
	}
	return true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Restaurant already exists or has another owner")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSIST_FAILED", "Could not save changes")
	}
}
