package domain

import "time"

// Category Model
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                   // Primary key
	Name        string    `gorm:"unique;not null" json:"name"`            // Unique category name
	Description string    `gorm:"type:text" json:"description"`           // Optional description
	ImageURL    string    `json:"image_url"`                              // Optional image
	IsActive    bool      `gorm:"default:true;not null" json:"is_active"` // Inactive categories are hidden from public listings
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
