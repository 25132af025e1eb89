package domain

import "time"

// Order statuses
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderReady          = "ready"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Pricing constants applied at order creation
const (
	DeliveryFee          = 50.0          // Flat delivery fee per order
	TaxRate              = 0.12          // Tax as a fraction of the item subtotal
	EstimatedDeliveryGap = 2 * time.Hour // ETA offset from order creation
)

// orderTransitions is the enforced adjacency table; a status may only move to
// one of its listed successors. Cancellation is reachable from pending only.
var orderTransitions = map[string][]string{
	OrderPending:        {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderPreparing},
	OrderPreparing:      {OrderReady},
	OrderReady:          {OrderOutForDelivery},
	OrderOutForDelivery: {OrderDelivered},
	OrderDelivered:      {},
	OrderCancelled:      {},
}

// ValidOrderStatus reports whether status names a known order status
func ValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// CanTransitionOrder reports whether an order may move from one status to another
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order Model
type Order struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`                         // Primary key
	CustomerID            uint        `gorm:"not null;index" json:"customer_id"`            // Ordering customer
	TotalAmount           float64     `gorm:"not null" json:"total_amount"`                 // Sum of item totals
	DeliveryFee           float64     `gorm:"default:0;not null" json:"delivery_fee"`       // Flat fee snapshot
	TaxAmount             float64     `gorm:"default:0;not null" json:"tax_amount"`         // TaxRate x TotalAmount
	DiscountAmount        float64     `gorm:"default:0;not null" json:"discount_amount"`    // Defaults to 0
	FinalAmount           float64     `gorm:"not null" json:"final_amount"`                 // Total + fee + tax - discount
	Status                string      `gorm:"default:pending;not null" json:"status"`       // One of the order status constants
	PaymentStatus         string      `gorm:"default:pending;not null" json:"payment_status"`
	DeliveryAddress       string      `gorm:"type:text;not null" json:"delivery_address"`   // Where to deliver
	DeliveryInstructions  string      `gorm:"type:text" json:"delivery_instructions"`       // Optional courier notes
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time"`                      // Set at creation
	ActualDeliveryTime    *time.Time  `json:"actual_delivery_time"`                         // Stamped when delivered
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	Items                 []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`     // Owned line items
}

// OrderItem Model
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`             // Primary key
	OrderID    uint      `gorm:"not null;index" json:"order_id"`   // Owning order
	ProductID  uint      `gorm:"not null" json:"product_id"`       // Ordered product
	Quantity   int       `gorm:"not null" json:"quantity"`         // Ordered quantity, > 0
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`       // Product price snapshot at order time
	TotalPrice float64   `gorm:"not null" json:"total_price"`      // UnitPrice x Quantity
	CreatedAt  time.Time `json:"created_at"`
}
