package models

import (
	"time"
)

// Wishlist is a single (user, product) membership row
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product;index" json:"product_id"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName specifies the table name for the Wishlist model
func (Wishlist) TableName() string {
	return "wishlists"
}
