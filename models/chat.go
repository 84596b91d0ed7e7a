package models

import (
	"time"
)

// Chat is the conversation between one user and one artisan. There is no
// closed state: once created a chat stays active until either side is deleted.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_chat_user_artisan" json:"user_id"`
	ArtisanID uint      `gorm:"not null;uniqueIndex:idx_chat_user_artisan;index" json:"artisan_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Artisan   *Artisan  `gorm:"foreignKey:ArtisanID;constraint:OnDelete:CASCADE" json:"artisan,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Messages []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Chat model
func (Chat) TableName() string {
	return "chats"
}
