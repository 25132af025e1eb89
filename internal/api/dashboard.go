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

// DashboardStats aggregates storefront-wide counters for admins
type DashboardStats struct {
	TotalOrders         int64             `json:"total_orders"`          // All orders ever placed
	TotalRevenue        float64           `json:"total_revenue"`         // Sum of final amounts over delivered orders
	TotalCustomers      int64             `json:"total_customers"`       // Accounts with the customer role
	PendingOrders       int64             `json:"pending_orders"`        // Orders awaiting confirmation
	CompletedOrders     int64             `json:"completed_orders"`      // Delivered orders
	CompletedDeliveries int64             `json:"completed_deliveries"`  // Delivered deliveries
	RecentOrders        []domain.Order    `json:"recent_orders"`         // Five most recent orders
	TopProducts         []TopProduct      `json:"top_products"`          // Best sellers by quantity
	RevenueByCategory   []CategoryRevenue `json:"revenue_by_category"`   // Delivered revenue per category
}

// TopProduct is a best-selling product with its ordered quantity
type TopProduct struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	TotalOrdered int64  `json:"total_ordered"`
}

// CategoryRevenue is delivered revenue attributed to one category
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// AdminStatsHandler returns storefront-wide statistics (admin only), cached briefly
func AdminStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := "dashboard:admin"
		var cached DashboardStats
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"stats": cached, "cached": true})
			return
		}
		var stats DashboardStats
		db.Model(&domain.Order{}).Count(&stats.TotalOrders)
		db.Model(&domain.User{}).Where("role = ?", domain.RoleCustomer).Count(&stats.TotalCustomers)
		db.Model(&domain.Order{}).Where("status = ?", domain.OrderPending).Count(&stats.PendingOrders)
		db.Model(&domain.Order{}).Where("status = ?", domain.OrderDelivered).Count(&stats.CompletedOrders)
		db.Model(&domain.Delivery{}).Where("status = ?", domain.DeliveryDelivered).Count(&stats.CompletedDeliveries)
		// Revenue only counts delivered orders
		var revenue *float64
		db.Model(&domain.Order{}).Where("status = ?", domain.OrderDelivered).
			Select("SUM(final_amount)").Scan(&revenue)
		if revenue != nil {
			stats.TotalRevenue = *revenue
		}
		db.Model(&domain.Order{}).Order("created_at desc").Limit(5).Find(&stats.RecentOrders)
		// Best sellers by total ordered quantity
		db.Model(&domain.OrderItem{}).
			Select("order_items.product_id, products.name, SUM(order_items.quantity) AS total_ordered").
			Joins("JOIN products ON products.id = order_items.product_id").
			Group("order_items.product_id, products.name").
			Order("total_ordered DESC").Limit(5).
			Scan(&stats.TopProducts)
		// Delivered revenue attributed per category
		db.Model(&domain.OrderItem{}).
			Select("categories.name AS category, SUM(order_items.total_price) AS revenue").
			Joins("JOIN products ON products.id = order_items.product_id").
			Joins("JOIN categories ON categories.id = products.category_id").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.status = ?", domain.OrderDelivered).
			Group("categories.name").
			Scan(&stats.RevenueByCategory)
		_ = utils.SetCache(ctx, rdb, cacheKey, stats, utils.CacheTTL)
		c.JSON(http.StatusOK, gin.H{"stats": stats, "cached": false})
	}
}

// BakerStatsHandler returns the calling baker's catalog and sales statistics
func BakerStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var totalProducts, availableProducts int64
		db.Model(&domain.Product{}).Where("baker_id = ?", callerID).Count(&totalProducts)
		db.Model(&domain.Product{}).
			Where("baker_id = ? AND is_available = ? AND stock_quantity > 0", callerID, true).
			Count(&availableProducts)
		// Orders touching any of this baker's products; each count builds a
		// fresh query to avoid gorm condition accumulation
		bakerOrders := func() *gorm.DB {
			return db.Model(&domain.Order{}).
				Joins("JOIN order_items ON order_items.order_id = orders.id").
				Joins("JOIN products ON products.id = order_items.product_id").
				Where("products.baker_id = ?", callerID).
				Distinct("orders.id")
		}
		var totalOrders, pendingOrders, preparingOrders, readyOrders int64
		bakerOrders().Count(&totalOrders)
		bakerOrders().Where("orders.status = ?", domain.OrderPending).Count(&pendingOrders)
		bakerOrders().Where("orders.status = ?", domain.OrderPreparing).Count(&preparingOrders)
		bakerOrders().Where("orders.status = ?", domain.OrderReady).Count(&readyOrders)
		// Revenue over delivered orders only
		var revenue *float64
		db.Model(&domain.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("products.baker_id = ? AND orders.status = ?", callerID, domain.OrderDelivered).
			Select("SUM(order_items.total_price)").Scan(&revenue)
		totalRevenue := 0.0
		if revenue != nil {
			totalRevenue = *revenue
		}
		c.JSON(http.StatusOK, gin.H{
			"total_products":     totalProducts,
			"available_products": availableProducts,
			"total_orders":       totalOrders,
			"pending_orders":     pendingOrders,
			"preparing_orders":   preparingOrders,
			"ready_orders":       readyOrders,
			"total_revenue":      totalRevenue,
		})
	}
}

// DeliveryPersonStatsHandler returns the calling courier's workload statistics
func DeliveryPersonStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var total, pending, assigned, completed int64
		db.Model(&domain.Delivery{}).Where("delivery_person_id = ?", callerID).Count(&total)
		db.Model(&domain.Delivery{}).
			Where("delivery_person_id = ? AND status = ?", callerID, domain.DeliveryPending).Count(&pending)
		db.Model(&domain.Delivery{}).
			Where("delivery_person_id = ? AND status = ?", callerID, domain.DeliveryAssigned).Count(&assigned)
		db.Model(&domain.Delivery{}).
			Where("delivery_person_id = ? AND status = ?", callerID, domain.DeliveryDelivered).Count(&completed)
		c.JSON(http.StatusOK, gin.H{
			"total_deliveries":     total,
			"pending_deliveries":   pending,
			"assigned_deliveries":  assigned,
			"completed_deliveries": completed,
		})
	}
}

// CustomerStatsHandler returns the calling customer's order statistics
func CustomerStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var totalOrders, pendingOrders, completedOrders int64
		db.Model(&domain.Order{}).Where("customer_id = ?", callerID).Count(&totalOrders)
		db.Model(&domain.Order{}).
			Where("customer_id = ? AND status = ?", callerID, domain.OrderPending).Count(&pendingOrders)
		db.Model(&domain.Order{}).
			Where("customer_id = ? AND status = ?", callerID, domain.OrderDelivered).Count(&completedOrders)
		var spent *float64
		db.Model(&domain.Order{}).
			Where("customer_id = ? AND status = ?", callerID, domain.OrderDelivered).
			Select("SUM(final_amount)").Scan(&spent)
		totalSpent := 0.0
		if spent != nil {
			totalSpent = *spent
		}
		c.JSON(http.StatusOK, gin.H{
			"total_orders":     totalOrders,
			"pending_orders":   pendingOrders,
			"completed_orders": completedOrders,
			"total_spent":      totalSpent,
		})
	}
}
