package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Delivery estimates

	"bakery_system/internal/domain"     // Importing domain models
	"bakery_system/internal/middleware" // Order operation metrics
	"bakery_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// OrderItemRequest is one (product, quantity) pair of a cart
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`     // Ordered product
	Quantity  int  `json:"quantity" binding:"required,gt=0"`  // Ordered quantity, > 0
}

// OrderCreateRequest carries a new order
type OrderCreateRequest struct {
	DeliveryAddress      string             `json:"delivery_address" binding:"required"` // Where to deliver
	DeliveryInstructions string             `json:"delivery_instructions"`               // Optional courier notes
	Items                []OrderItemRequest `json:"items" binding:"required"`            // Cart contents
}

// OrderStatusRequest carries a status transition
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"` // Target status
}

// orderTotals computes subtotal, tax, and final amount for a priced cart.
// Unit prices are read from the store, never from the caller.
func orderTotals(items []domain.OrderItem, discount float64) (subtotal, tax, final float64) {
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	tax = subtotal * domain.TaxRate
	final = subtotal + domain.DeliveryFee + tax - discount
	return
}

// CreateOrderHandler validates the cart, computes totals, and persists the order,
// its items, and the stock decrements in a single transaction
func CreateOrderHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		success := false
		defer func() { middleware.RecordOrderOperation("create", success) }()
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req OrderCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
			return
		}
		for _, item := range req.Items {
			if item.Quantity <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Item quantity must be positive"})
				return
			}
		}
		var order domain.Order
		// The whole workflow runs in one transaction: order row, line items, and
		// stock decrements commit together or not at all
		err := db.Transaction(func(tx *gorm.DB) error {
			items := make([]domain.OrderItem, 0, len(req.Items))
			for _, reqItem := range req.Items {
				var product domain.Product
				if err := tx.First(&product, reqItem.ProductID).Error; err != nil {
					c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
					return gorm.ErrRecordNotFound
				}
				if !product.IsAvailable {
					c.JSON(http.StatusNotFound, gin.H{"error": "Product not available: " + product.Name})
					return gorm.ErrRecordNotFound
				}
				// Conditional decrement guarded by stock_quantity >= requested;
				// zero rows affected means another order got there first
				result := tx.Model(&domain.Product{}).
					Where("id = ? AND stock_quantity >= ?", product.ID, reqItem.Quantity).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", reqItem.Quantity))
				if result.Error != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
					return result.Error
				}
				if result.RowsAffected == 0 {
					c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for product " + product.Name})
					return gorm.ErrInvalidData
				}
				// Products that sold out become unavailable
				if err := tx.Model(&domain.Product{}).
					Where("id = ? AND stock_quantity = 0", product.ID).
					Update("is_available", false).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
					return err
				}
				// Snapshot the unit price at order time
				items = append(items, domain.OrderItem{
					ProductID:  product.ID,
					Quantity:   reqItem.Quantity,
					UnitPrice:  product.Price,
					TotalPrice: product.Price * float64(reqItem.Quantity),
				})
			}
			subtotal, tax, final := orderTotals(items, 0)
			eta := time.Now().Add(domain.EstimatedDeliveryGap)
			order = domain.Order{
				CustomerID:            callerID,
				TotalAmount:           subtotal,
				DeliveryFee:           domain.DeliveryFee,
				TaxAmount:             tax,
				DiscountAmount:        0,
				FinalAmount:           final,
				Status:                domain.OrderPending,
				PaymentStatus:         domain.PaymentPending,
				DeliveryAddress:       req.DeliveryAddress,
				DeliveryInstructions:  req.DeliveryInstructions,
				EstimatedDeliveryTime: &eta,
				Items:                 items,
			}
			if err := tx.Create(&order).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
				return err
			}
			return nil
		})
		if err != nil {
			// The handler already wrote the failure response inside the transaction
			logrus.WithFields(logrus.Fields{
				"customer_id": callerID,
				"error":       err.Error(),
			}).Warn("Order creation failed")
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "products:")
		_ = utils.InvalidatePrefix(context.Background(), rdb, "dashboard:")
		logrus.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"customer_id":  callerID,
			"final_amount": order.FinalAmount,
			"items":        len(order.Items),
		}).Info("Order created")
		success = true
		c.JSON(http.StatusCreated, order)
	}
}

// ListOrdersHandler returns orders; admin sees all with filters, others see their own
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize, offset := pagination(c)
		query := db.Model(&domain.Order{}).Preload("Items")
		if isAdmin(callerRole) {
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
			if customerID := c.Query("customer_id"); customerID != "" {
				query = query.Where("customer_id = ?", customerID)
			}
		} else {
			// Non-admin callers only ever see their own orders
			query = query.Where("customer_id = ?", callerID)
		}
		var orders []domain.Order
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders, "page": page, "page_size": pageSize})
	}
}

// GetOrderHandler returns one order; ordering customer or admin only
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}
		var order domain.Order
		if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if order.CustomerID != callerID && !isAdmin(callerRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// MyOrdersHandler returns the calling customer's orders
func MyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		_, pageSize, offset := pagination(c)
		var orders []domain.Order
		if err := db.Preload("Items").Where("customer_id = ?", callerID).
			Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// OrdersByStatusHandler returns orders in a given status (baker/admin)
func OrdersByStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Param("status")
		if !domain.ValidOrderStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}
		_, pageSize, offset := pagination(c)
		var orders []domain.Order
		if err := db.Preload("Items").Where("status = ?", status).
			Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// UpdateOrderStatusHandler applies a status transition. Transitions must follow
// the adjacency table; customers may only cancel their own pending orders.
func UpdateOrderStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		success := false
		defer func() { middleware.RecordOrderOperation("update_status", success) }()
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}
		// Status may arrive as JSON body or query parameter
		newStatus := c.Query("status")
		if newStatus == "" {
			var req OrderStatusRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			newStatus = req.Status
		}
		if !domain.ValidOrderStatus(newStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}
		var order domain.Order
		if err := db.First(&order, orderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		switch callerRole {
		case domain.RoleBaker, domain.RoleDeliveryPerson, domain.RoleAdmin:
			// Role-authorized callers may apply any legal transition
		case domain.RoleCustomer:
			// Customers are limited to cancelling their own pending orders
			if order.CustomerID != callerID {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
				return
			}
			if newStatus != domain.OrderCancelled {
				c.JSON(http.StatusForbidden, gin.H{"error": "Customers can only cancel orders"})
				return
			}
			if order.Status != domain.OrderPending {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Can only cancel pending orders"})
				return
			}
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		prevStatus := order.Status
		if !domain.CanTransitionOrder(prevStatus, newStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition from " + prevStatus + " to " + newStatus})
			return
		}
		updates := map[string]any{"status": newStatus}
		if newStatus == domain.OrderDelivered {
			updates["actual_delivery_time"] = time.Now() // Delivered stamps the actual time
		}
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		_ = utils.InvalidatePrefix(context.Background(), rdb, "dashboard:")
		logrus.WithFields(logrus.Fields{
			"order_id": orderID,
			"from":     prevStatus,
			"to":       newStatus,
			"by":       callerID,
		}).Info("Order status updated")
		if err := db.Preload("Items").First(&order, orderID).Error; err == nil {
			success = true
			c.JSON(http.StatusOK, order)
			return
		}
		success = true
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": orderID})
	}
}
