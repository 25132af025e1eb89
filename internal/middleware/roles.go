package middleware

import (
	"net/http" // HTTP status codes

	"bakery_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRole enforces that the authenticated caller holds the given role.
// Admin satisfies every role requirement.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, exists := c.Get("userRole") // Set by JWTAuthMiddleware
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Admin is a universal override
		if callerRole != role && callerRole != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts an operation to admins only
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
