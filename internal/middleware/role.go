package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"theknife/internal/pkg/jwt"
	"theknife/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if role != requiredRole {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OwnerOnly middleware requires owner role
func OwnerOnly() gin.HandlerFunc {
	return RequireRole(jwt.RoleOwner)
}
