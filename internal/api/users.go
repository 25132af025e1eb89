package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"bakery_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// UserUpdateRequest carries a partial profile update
type UserUpdateRequest struct {
	Email    *string `json:"email"`     // New email, uniqueness re-checked
	Username *string `json:"username"`  // New username, uniqueness re-checked
	FullName *string `json:"full_name"` // New display name
	Phone    *string `json:"phone"`     // New phone
	Address  *string `json:"address"`   // New default address
	IsActive *bool   `json:"is_active"` // Admin-only activation toggle
}

// ListUsersHandler returns all users, optionally filtered by role (admin only)
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		role := c.Query("role")
		countQuery := db.Model(&domain.User{})
		listQuery := db.Model(&domain.User{})
		if role != "" {
			countQuery = countQuery.Where("role = ?", role) // Filter by role
			listQuery = listQuery.Where("role = ?", role)
		}
		var total int64
		if err := countQuery.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User
		if err := listQuery.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		c.JSON(http.StatusOK, gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
		})
	}
}

// GetUserHandler returns a single user; callers may only view themselves unless admin
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		// Ownership check, waived for admin
		if callerID != userID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserHandler updates a profile; callers may only update themselves unless admin
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if callerID != userID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var req UserUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Re-check email uniqueness when it changes
		if req.Email != nil {
			email := strings.ToLower(*req.Email)
			if email != user.Email {
				var existing domain.User
				if err := db.Where("email = ?", email).First(&existing).Error; err == nil && existing.ID != userID {
					c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
					return
				}
				user.Email = email
			}
		}
		// Re-check username uniqueness when it changes
		if req.Username != nil && *req.Username != user.Username {
			var existing domain.User
			if err := db.Where("username = ?", *req.Username).First(&existing).Error; err == nil && existing.ID != userID {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			user.Username = *req.Username
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Address != nil {
			user.Address = *req.Address
		}
		// Only admins may flip activation
		if req.IsActive != nil && isAdmin(callerRole) {
			user.IsActive = *req.IsActive
		}
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeactivateUserHandler soft-disables an account (admin only); users are never hard-deleted
func DeactivateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if userID == callerID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate yourself"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := db.Model(&user).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "by": callerID}).Info("User deactivated")
		c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
	}
}

// ActivateUserHandler re-enables an account (admin only)
func ActivateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := db.Model(&user).Update("is_active", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User activated successfully"})
	}
}

// ListUsersByRoleHandler returns users holding a given role (admin only)
func ListUsersByRoleHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		if !domain.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		_, pageSize, offset := pagination(c)
		var users []domain.User
		if err := db.Where("role = ?", role).Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}
