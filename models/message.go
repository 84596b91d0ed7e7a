package models

import (
	"time"
)

// MaxMessageLength is the longest message content accepted, in characters
const MaxMessageLength = 5000

// Message is an immutable entry in a chat log
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     uint      `gorm:"not null;index:idx_message_chat_timestamp,priority:1" json:"chat_id"`
	SenderID   uint      `gorm:"not null" json:"sender_id"`
	SenderType string    `gorm:"size:20;not null" json:"sender_type"` // "user" or "artisan"
	Content    string    `gorm:"type:text;not null" json:"content"`
	Timestamp  time.Time `gorm:"not null;index:idx_message_chat_timestamp,priority:2" json:"timestamp"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
