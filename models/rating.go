package models

import (
	"time"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is the single star rating a user gives an artisan
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:unique_user_artisan_rating" json:"user_id"`
	ArtisanID uint      `gorm:"not null;uniqueIndex:unique_user_artisan_rating;index" json:"artisan_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Rating model
func (Rating) TableName() string {
	return "ratings"
}
