package api

import (
	"strconv" // String conversion

	"bakery_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// pagination reads page/page_size query parameters with the usual caps
func pagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	offset = (page - 1) * pageSize // Calculate offset for pagination
	return
}

// caller returns the authenticated user's ID and role from the request context
func caller(c *gin.Context) (uint, string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, "", false
	}
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	return userID.(uint), roleStr, true
}

// isAdmin reports whether the caller role is admin
func isAdmin(role string) bool {
	return role == domain.RoleAdmin
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}
