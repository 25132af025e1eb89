package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"bakery_system/internal/domain" // Importing domain models
	"bakery_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// CategoryCreateRequest carries a new category
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"` // Unique category name
	Description string `json:"description"`             // Optional description
	ImageURL    string `json:"image_url"`               // Optional image
}

// CategoryUpdateRequest carries a partial category update
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`        // New name, uniqueness re-checked
	Description *string `json:"description"` // New description
	ImageURL    *string `json:"image_url"`   // New image
	IsActive    *bool   `json:"is_active"`   // Activation toggle
}

// ListCategoriesHandler returns categories, active only by default, cached for reads
func ListCategoriesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := c.DefaultQuery("active_only", "true") == "true"
		ctx := context.Background()
		cacheKey := "categories:active=" + c.DefaultQuery("active_only", "true")
		var cached []domain.Category
		// Serve from cache when possible; redis errors fall through to the DB
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"categories": cached, "cached": true})
			return
		}
		query := db.Model(&domain.Category{})
		if activeOnly {
			query = query.Where("is_active = ?", true)
		}
		var categories []domain.Category
		if err := query.Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, categories, utils.CacheTTL)
		c.JSON(http.StatusOK, gin.H{"categories": categories, "cached": false})
	}
}

// GetCategoryHandler returns a single category
func GetCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		var category domain.Category
		if err := db.First(&category, categoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// CreateCategoryHandler creates a category (admin only)
func CreateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Category names are unique
		var existing domain.Category
		if err := db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
			return
		}
		category := domain.Category{
			Name:        req.Name,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			IsActive:    true,
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "categories:")
		c.JSON(http.StatusCreated, category)
	}
}

// UpdateCategoryHandler updates a category (admin only)
func UpdateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		var category domain.Category
		if err := db.First(&category, categoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Re-check name uniqueness when it changes
		if req.Name != nil && *req.Name != category.Name {
			var existing domain.Category
			if err := db.Where("name = ?", *req.Name).First(&existing).Error; err == nil && existing.ID != categoryID {
				c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
				return
			}
			category.Name = *req.Name
		}
		if req.Description != nil {
			category.Description = *req.Description
		}
		if req.ImageURL != nil {
			category.ImageURL = *req.ImageURL
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "categories:")
		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategoryHandler deletes a category (admin only); blocked while products reference it
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		var category domain.Category
		if err := db.First(&category, categoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		// Deletion is blocked while any product references the category
		var productCount int64
		if err := db.Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&productCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category products"})
			return
		}
		if productCount > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete category with products. Please reassign or delete products first."})
			return
		}
		if err := db.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "categories:")
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
