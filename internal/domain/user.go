package domain

import "time"

// User roles
const (
	RoleCustomer       = "customer"        // Places orders
	RoleBaker          = "baker"           // Owns and manages product listings
	RoleDeliveryPerson = "delivery_person" // Fulfills physical handoff of orders
	RoleAdmin          = "admin"           // Satisfies every role requirement
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                   // Primary key
	Email     string    `gorm:"unique;not null" json:"email"`           // Unique email, JWT subject
	Username  string    `gorm:"unique;not null" json:"username"`        // Unique username
	FullName  string    `gorm:"not null" json:"full_name"`              // Display name
	Phone     string    `json:"phone"`                                  // Contact phone
	Address   string    `gorm:"type:text" json:"address"`               // Default delivery address
	Password  string    `gorm:"not null" json:"-"`                      // Bcrypt hash, never serialized
	Role      string    `gorm:"default:customer;not null" json:"role"`  // One of the role constants above
	IsActive  bool      `gorm:"default:true;not null" json:"is_active"` // Deactivation is a soft state; users are never hard-deleted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether role is one of the known user roles
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleBaker, RoleDeliveryPerson, RoleAdmin:
		return true
	}
	return false
}
