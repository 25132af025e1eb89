package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"bakery_system/internal/domain" // Importing domain models
	"bakery_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ProductCreateRequest carries a new product listing
type ProductCreateRequest struct {
	Name          string  `json:"name" binding:"required"`         // Product name
	Description   string  `json:"description"`                     // Optional description
	Price         float64 `json:"price" binding:"required,gte=0"`  // Non-negative unit price
	ImageURL      string  `json:"image_url"`                       // Optional image
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`  // Initial stock
	CategoryID    uint    `json:"category_id" binding:"required"`  // Category reference
}

// ProductUpdateRequest carries a partial product update
type ProductUpdateRequest struct {
	Name        *string  `json:"name"`        // New name
	Description *string  `json:"description"` // New description
	Price       *float64 `json:"price"`       // New price, must stay non-negative
	ImageURL    *string  `json:"image_url"`   // New image
	IsAvailable *bool    `json:"is_available"`
	CategoryID  *uint    `json:"category_id"` // New category, existence re-checked
}

// ListProductsHandler returns products with search/category/baker filters; public endpoint
func ListProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		availableOnly := c.DefaultQuery("available_only", "true") == "true"
		search := c.Query("search")
		ctx := context.Background()
		// Cache key covers every filter that shapes the result
		cacheKey := "products:search=" + search +
			":category=" + c.DefaultQuery("category_id", "") +
			":baker=" + c.DefaultQuery("baker_id", "") +
			":available=" + c.DefaultQuery("available_only", "true") +
			":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached []domain.Product
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"products": cached, "page": page, "page_size": pageSize, "cached": true})
			return
		}
		query := db.Model(&domain.Product{})
		if search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%") // Name substring search
		}
		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}
		if bakerID := c.Query("baker_id"); bakerID != "" {
			query = query.Where("baker_id = ?", bakerID)
		}
		if availableOnly {
			query = query.Where("is_available = ? AND stock_quantity > 0", true)
		}
		var products []domain.Product
		if err := query.Offset(offset).Limit(pageSize).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, products, utils.CacheTTL)
		c.JSON(http.StatusOK, gin.H{"products": products, "page": page, "page_size": pageSize, "cached": false})
	}
}

// GetProductHandler returns a single product; public endpoint
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var product domain.Product
		if err := db.First(&product, productID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// CreateProductHandler creates a listing owned by the calling baker (baker only)
func CreateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The referenced category must exist
		var category domain.Category
		if err := db.First(&category, req.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		product := domain.Product{
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			ImageURL:      req.ImageURL,
			StockQuantity: req.StockQuantity,
			IsAvailable:   req.StockQuantity > 0,
			BakerID:       callerID,
			CategoryID:    req.CategoryID,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "products:")
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,
			"baker_id":   callerID,
			"price":      product.Price,
		}).Info("Product created")
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProductHandler updates a listing; owning baker or admin only
func UpdateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		productID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var product domain.Product
		if err := db.First(&product, productID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		// Ownership check, waived for admin
		if product.BakerID != callerID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Price != nil && *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
			return
		}
		// Re-check category existence when it changes
		if req.CategoryID != nil {
			var category domain.Category
			if err := db.First(&category, *req.CategoryID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
				return
			}
			product.CategoryID = *req.CategoryID
		}
		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.ImageURL != nil {
			product.ImageURL = *req.ImageURL
		}
		if req.IsAvailable != nil {
			product.IsAvailable = *req.IsAvailable
		}
		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "products:")
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProductHandler soft-deletes a listing by marking it unavailable; owning baker or admin only
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		productID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var product domain.Product
		if err := db.First(&product, productID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if product.BakerID != callerID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		// Soft delete keeps the row for order-item history
		if err := db.Model(&product).Update("is_available", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "products:")
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// UpdateStockHandler applies a signed stock adjustment atomically; owning baker or admin only
func UpdateStockHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		productID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		change, err := strconv.Atoi(c.Query("quantity_change"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity_change"})
			return
		}
		var product domain.Product
		if err := db.First(&product, productID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if product.BakerID != callerID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		// Conditional update keeps stock from going negative under concurrent adjustments
		result := db.Model(&domain.Product{}).
			Where("id = ? AND stock_quantity + ? >= 0", productID, change).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", change))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
			return
		}
		// Availability tracks whether stock remains
		if err := db.First(&product, productID).Error; err == nil {
			_ = db.Model(&product).Update("is_available", product.StockQuantity > 0).Error
			product.IsAvailable = product.StockQuantity > 0
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "products:")
		c.JSON(http.StatusOK, product)
	}
}

// MyProductsHandler returns the calling baker's own listings
func MyProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		_, pageSize, offset := pagination(c)
		var products []domain.Product
		if err := db.Where("baker_id = ?", callerID).Offset(offset).Limit(pageSize).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
