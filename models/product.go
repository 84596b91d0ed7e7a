package models

import (
	"time"
)

// Product represents an item listed by an artisan
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;check:price > 0" json:"price"`
	Category    string    `gorm:"size:100" json:"category"`
	ImageURL    *string   `gorm:"size:255" json:"image_url"`
	ArtisanID   uint      `gorm:"not null;index" json:"artisan_id"` // owning artisan
	CreatedAt   time.Time `json:"created_at"`

	Wishlists []Wishlist `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
