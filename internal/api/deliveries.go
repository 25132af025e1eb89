package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Event timestamps

	"bakery_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// DeliveryCreateRequest carries a new delivery for an order
type DeliveryCreateRequest struct {
	OrderID          uint  `json:"order_id" binding:"required"` // Order to deliver
	DeliveryPersonID *uint `json:"delivery_person_id"`          // Optional courier binding at creation
}

// DeliveryStatusRequest carries a delivery status transition
type DeliveryStatusRequest struct {
	Status            string   `json:"status" binding:"required"` // Target status
	Notes             *string  `json:"notes"`                     // Optional courier notes
	LocationLatitude  *float64 `json:"location_latitude"`         // Optional last known position
	LocationLongitude *float64 `json:"location_longitude"`
}

// validDeliveryPerson checks that the referenced user exists, is active, and is a courier
func validDeliveryPerson(db *gorm.DB, id uint) bool {
	var person domain.User
	err := db.Where("id = ? AND role = ? AND is_active = ?", id, domain.RoleDeliveryPerson, true).
		First(&person).Error
	return err == nil
}

// CreateDeliveryHandler binds a new delivery to an order (admin only)
func CreateDeliveryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeliveryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The referenced order must exist
		var order domain.Order
		if err := db.First(&order, req.OrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		// At most one delivery per order
		var existing domain.Delivery
		if err := db.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Delivery already exists for this order"})
			return
		}
		delivery := domain.Delivery{OrderID: req.OrderID, Status: domain.DeliveryPending}
		// A courier supplied at creation must be a valid active delivery person
		if req.DeliveryPersonID != nil {
			if !validDeliveryPerson(db, *req.DeliveryPersonID) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery person"})
				return
			}
			now := time.Now()
			delivery.DeliveryPersonID = req.DeliveryPersonID
			delivery.Status = domain.DeliveryAssigned
			delivery.AssignedAt = &now
		}
		if err := db.Create(&delivery).Error; err != nil {
			// The unique index on order_id backs up the existence check
			c.JSON(http.StatusConflict, gin.H{"error": "Delivery already exists for this order"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"delivery_id": delivery.ID,
			"order_id":    delivery.OrderID,
		}).Info("Delivery created")
		c.JSON(http.StatusCreated, delivery)
	}
}

// ListDeliveriesHandler returns deliveries; admin sees all, couriers see their own
func ListDeliveriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		_, pageSize, offset := pagination(c)
		query := db.Model(&domain.Delivery{})
		switch {
		case isAdmin(callerRole):
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
			if personID := c.Query("delivery_person_id"); personID != "" {
				query = query.Where("delivery_person_id = ?", personID)
			}
		case callerRole == domain.RoleDeliveryPerson:
			query = query.Where("delivery_person_id = ?", callerID)
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		var deliveries []domain.Delivery
		if err := query.Offset(offset).Limit(pageSize).Find(&deliveries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deliveries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
	}
}

// GetDeliveryHandler returns one delivery; admin, assigned courier, or the ordering customer
func GetDeliveryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		deliveryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
			return
		}
		var delivery domain.Delivery
		if err := db.First(&delivery, deliveryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		var order domain.Order
		if err := db.First(&order, delivery.OrderID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch delivery"})
			return
		}
		assigned := delivery.DeliveryPersonID != nil && *delivery.DeliveryPersonID == callerID
		if !isAdmin(callerRole) && !assigned && order.CustomerID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.JSON(http.StatusOK, delivery)
	}
}

// AssignDeliveryHandler rebinds a courier and forces status to assigned (admin only)
func AssignDeliveryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliveryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
			return
		}
		personID, err := strconv.Atoi(c.Query("delivery_person_id"))
		if err != nil || personID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery person"})
			return
		}
		if !validDeliveryPerson(db, uint(personID)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery person"})
			return
		}
		var delivery domain.Delivery
		if err := db.First(&delivery, deliveryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		now := time.Now()
		updates := map[string]any{
			"delivery_person_id": uint(personID),
			"status":             domain.DeliveryAssigned,
			"assigned_at":        now,
		}
		if err := db.Model(&delivery).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign delivery"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"delivery_id":        deliveryID,
			"delivery_person_id": personID,
		}).Info("Delivery assigned")
		_ = db.First(&delivery, deliveryID).Error
		c.JSON(http.StatusOK, delivery)
	}
}

// UpdateDeliveryStatusHandler applies a delivery transition; admin or the assigned
// courier only. Delivered also force-completes the parent order.
func UpdateDeliveryStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerRole, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		deliveryID, ok := pathID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
			return
		}
		var req DeliveryStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !domain.ValidDeliveryStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery status"})
			return
		}
		var delivery domain.Delivery
		if err := db.First(&delivery, deliveryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		assigned := delivery.DeliveryPersonID != nil && *delivery.DeliveryPersonID == callerID
		if !isAdmin(callerRole) && !assigned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		if !domain.CanTransitionDelivery(delivery.Status, req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition from " + delivery.Status + " to " + req.Status})
			return
		}
		now := time.Now()
		updates := map[string]any{"status": req.Status}
		if req.Notes != nil {
			updates["delivery_notes"] = *req.Notes
		}
		if req.LocationLatitude != nil {
			updates["location_latitude"] = *req.LocationLatitude
		}
		if req.LocationLongitude != nil {
			updates["location_longitude"] = *req.LocationLongitude
		}
		switch req.Status {
		case domain.DeliveryPickedUp:
			updates["picked_up_at"] = now // Picked up stamps its timestamp
		case domain.DeliveryDelivered:
			updates["delivered_at"] = now // Delivered stamps its timestamp
		}
		// Delivery update and any parent-order completion commit together
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&delivery).Updates(updates).Error; err != nil {
				return err
			}
			if req.Status == domain.DeliveryDelivered {
				// Completing the delivery completes the order
				return tx.Model(&domain.Order{}).Where("id = ?", delivery.OrderID).
					Updates(map[string]any{
						"status":               domain.OrderDelivered,
						"actual_delivery_time": now,
					}).Error
			}
			return nil
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"delivery_id": deliveryID,
				"error":       err.Error(),
			}).Error("Delivery status update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"delivery_id": deliveryID,
			"status":      req.Status,
			"by":          callerID,
		}).Info("Delivery status updated")
		_ = db.First(&delivery, deliveryID).Error
		c.JSON(http.StatusOK, delivery)
	}
}

// MyDeliveriesHandler returns the calling courier's deliveries
func MyDeliveriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		_, pageSize, offset := pagination(c)
		var deliveries []domain.Delivery
		if err := db.Where("delivery_person_id = ?", callerID).
			Offset(offset).Limit(pageSize).Find(&deliveries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deliveries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
	}
}

// PendingDeliveriesHandler returns unassigned deliveries (admin only)
func PendingDeliveriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, pageSize, offset := pagination(c)
		var deliveries []domain.Delivery
		if err := db.Where("status = ?", domain.DeliveryPending).
			Offset(offset).Limit(pageSize).Find(&deliveries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deliveries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
	}
}

// AvailablePersonnelHandler returns active couriers with no delivery currently
// in an active state (admin only)
func AvailablePersonnelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var personnel []domain.User
		err := db.Where("role = ? AND is_active = ?", domain.RoleDeliveryPerson, true).
			Where("id NOT IN (?)",
				db.Model(&domain.Delivery{}).Select("delivery_person_id").
					Where("delivery_person_id IS NOT NULL AND status IN ?", domain.ActiveDeliveryStatuses)).
			Find(&personnel).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch delivery personnel"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"personnel": personnel})
	}
}
