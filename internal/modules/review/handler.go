package review

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"theknife/internal/pkg/response"
	"theknife/internal/pkg/validator"
)

// FavoriteCounter supplies the favorites figure of the customer dashboard.
type FavoriteCounter interface {
	Count(userID string) int
}

type Handler struct {
	svc       *Service
	favorites FavoriteCounter
}

func NewHandler(svc *Service, favorites FavoriteCounter) *Handler {
	return &Handler{svc: svc, favorites: favorites}
}

// RegisterRoutes mounts each group that is non-nil. owner must already be
// gated on the owner role.
func (h *Handler) RegisterRoutes(public, protected, owner *gin.RouterGroup) {
	if public != nil {
		public.GET("/restaurants/reviews", h.GetByRestaurant)
		public.GET("/reviews/:id", h.GetByID)
	}

	if protected != nil {
		protected.POST("/reviews", h.Create)
		protected.GET("/me/reviews", h.MyReviews)
		protected.GET("/me/stats", h.MyStats)
	}

	if owner != nil {
		owner.GET("/owner/reviews", h.OwnerReviews)
		owner.POST("/reviews/:id/reply", h.Reply)
		owner.PUT("/reviews/:id/reply", h.ReplaceReply)
	}
}

// Create handles POST /reviews
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid review", errs)
		return
	}

	rv, err := h.svc.Submit(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		writeError(c, err, "Restaurant not found")
		return
	}

	response.Success(c, http.StatusCreated, rv)
}

// GetByRestaurant handles GET /restaurants/reviews?name=
func (h *Handler) GetByRestaurant(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	items := h.svc.ReviewsFor(name)
	response.Success(c, http.StatusOK, RestaurantReviewsResponse{
		RestaurantName: name,
		AverageRating:  h.svc.AverageRating(name),
		Count:          len(items),
		Reviews:        items,
	})
}

// GetByID handles GET /reviews/:id
func (h *Handler) GetByID(c *gin.Context) {
	rv, ok := h.svc.Get(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Review not found")
		return
	}
	response.Success(c, http.StatusOK, rv)
}

// MyReviews handles GET /me/reviews
func (h *Handler) MyReviews(c *gin.Context) {
	response.Success(c, http.StatusOK, h.svc.ReviewsBy(c.GetString("user_id")))
}

// MyStats handles GET /me/stats
func (h *Handler) MyStats(c *gin.Context) {
	userID := c.GetString("user_id")
	favorites := 0
	if h.favorites != nil {
		favorites = h.favorites.Count(userID)
	}
	response.Success(c, http.StatusOK, h.svc.StatsFor(userID, favorites))
}

// OwnerReviews handles GET /owner/reviews?pending=true
func (h *Handler) OwnerReviews(c *gin.Context) {
	items := h.svc.ReviewsForOwner(c.GetString("user_id"))
	if c.Query("pending") == "true" {
		pending := items[:0]
		for _, rv := range items {
			if !rv.HasReply() {
				pending = append(pending, rv)
			}
		}
		items = pending
	}
	response.Success(c, http.StatusOK, items)
}

// Reply handles POST /reviews/:id/reply
func (h *Handler) Reply(c *gin.Context) {
	h.respond(c, false)
}

// ReplaceReply handles PUT /reviews/:id/reply
func (h *Handler) ReplaceReply(c *gin.Context) {
	h.respond(c, true)
}

func (h *Handler) respond(c *gin.Context, replace bool) {
	var req OwnerReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reply must be at least 10 characters", errs)
		return
	}

	rv, err := h.svc.Respond(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Text, replace)
	if err != nil {
		writeError(c, err, "Review not found")
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func writeError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", notFound)
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this restaurant")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Review already answered")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSIST_FAILED", "Could not save review")
	}
}
