package models

import (
	"time"
)

// RevokedToken records a logged-out token id until the token would have expired
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex;not null" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RevokedToken model
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
