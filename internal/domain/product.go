package domain

import "time"

// Product Model
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Name          string    `gorm:"not null" json:"name"`                       // Product name
	Description   string    `gorm:"type:text" json:"description"`               // Optional description
	Price         float64   `gorm:"not null" json:"price"`                      // Non-negative unit price
	ImageURL      string    `json:"image_url"`                                  // Optional image
	StockQuantity int       `gorm:"default:0;not null" json:"stock_quantity"`   // Non-negative stock counter
	IsAvailable   bool      `gorm:"default:true;not null" json:"is_available"`  // Soft-delete flag; also flips false when stock hits 0
	BakerID       uint      `gorm:"not null;index" json:"baker_id"`             // Owning baker
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`          // Category reference
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
