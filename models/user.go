package models

import (
	"time"
)

// Principal roles
const (
	RoleUser    = "user"
	RoleArtisan = "artisan"
)

// User represents a buyer account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Wishlists []Wishlist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings   []Rating   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
