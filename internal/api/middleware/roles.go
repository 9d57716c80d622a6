package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/auth"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

// requireRole builds a role guard. Assumes AuthMiddleware runs first.
func requireRole(message string, allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !allowed(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// RequireAgent admits agents and admins.
func RequireAgent() gin.HandlerFunc {
	return requireRole("Agent privileges required", auth.IsAgent)
}

// RequireBuyer admits buyers and admins.
func RequireBuyer() gin.HandlerFunc {
	return requireRole("Buyer privileges required", auth.IsBuyer)
}

// RequireAdmin admits admins only.
func RequireAdmin() gin.HandlerFunc {
	return requireRole("Administrator privileges required", auth.IsAdmin)
}
