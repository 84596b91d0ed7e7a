package models

import (
	"time"
)

// Artisan represents a craft seller. Rating and TotalRatings are derived from
// the ratings table and are only written by the rating aggregator.
type Artisan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	CraftType    string    `gorm:"size:100;not null" json:"craft_type"`
	Location     string    `gorm:"size:150" json:"location"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Contact      string    `gorm:"size:50" json:"contact"`
	ImageURL     *string   `gorm:"size:255" json:"image_url"` // nullable until an image is uploaded
	Rating       float64   `gorm:"not null;default:0" json:"rating"`
	TotalRatings int       `gorm:"not null;default:0" json:"total_ratings"`
	CreatedAt    time.Time `json:"created_at"`

	Products []Product `gorm:"foreignKey:ArtisanID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
	Ratings  []Rating  `gorm:"foreignKey:ArtisanID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Artisan model
func (Artisan) TableName() string {
	return "artisans"
}
