package domain

import "time"

// Delivery statuses
const (
	DeliveryPending   = "pending"
	DeliveryAssigned  = "assigned"
	DeliveryPickedUp  = "picked_up"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
)

// deliveryTransitions is the enforced adjacency table for deliveries.
var deliveryTransitions = map[string][]string{
	DeliveryPending:   {DeliveryAssigned},
	DeliveryAssigned:  {DeliveryPickedUp},
	DeliveryPickedUp:  {DeliveryInTransit},
	DeliveryInTransit: {DeliveryDelivered},
	DeliveryDelivered: {},
}

// ActiveDeliveryStatuses are the states that keep a delivery person busy
var ActiveDeliveryStatuses = []string{DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit}

// ValidDeliveryStatus reports whether status names a known delivery status
func ValidDeliveryStatus(status string) bool {
	_, ok := deliveryTransitions[status]
	return ok
}

// CanTransitionDelivery reports whether a delivery may move from one status to another
func CanTransitionDelivery(from, to string) bool {
	for _, next := range deliveryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Delivery Model
type Delivery struct {
	ID                uint       `gorm:"primaryKey" json:"id"`                       // Primary key
	OrderID           uint       `gorm:"uniqueIndex;not null" json:"order_id"`       // At most one delivery per order
	DeliveryPersonID  *uint      `gorm:"index" json:"delivery_person_id"`            // Assigned courier, nullable until assigned
	Status            string     `gorm:"default:pending;not null" json:"status"`     // One of the delivery status constants
	AssignedAt        *time.Time `json:"assigned_at"`                                // Stamped on assignment
	PickedUpAt        *time.Time `json:"picked_up_at"`                               // Stamped when picked up
	DeliveredAt       *time.Time `json:"delivered_at"`                               // Stamped when delivered
	DeliveryNotes     string     `gorm:"type:text" json:"delivery_notes"`            // Courier notes
	LocationLatitude  *float64   `json:"location_latitude"`                          // Last known position
	LocationLongitude *float64   `json:"location_longitude"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
