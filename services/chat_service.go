package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Message paging limits
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// ChatService runs conversations between users and artisans
type ChatService struct {
	db  *gorm.DB
	now func() time.Time
}

// MessagePage selects a window of a chat log. AfterID is exclusive; zero
// starts from the first message.
type MessagePage struct {
	AfterID uint
	Limit   int
}

// MessageList is one window of a chat log in send order. NextAfterID is set
// when more messages may follow; pass it back as MessagePage.AfterID.
type MessageList struct {
	Chat        models.Chat      `json:"chat"`
	Messages    []models.Message `json:"messages"`
	NextAfterID *uint            `json:"next_after_id"`
}

// NewChatService creates a chat service backed by db
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db, now: time.Now}
}

// StartChat returns the chat between the caller and an artisan, creating it
// on first contact. created reports whether this call created the chat.
func (s *ChatService) StartChat(ctx context.Context, p models.Principal, artisanID uint) (*models.Chat, bool, error) {
	if !p.IsUser() {
		return nil, false, unauthorized("FORBIDDEN", "Only users can start chats")
	}

	var chat models.Chat
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artisan models.Artisan
		if err := tx.Select("id").Take(&artisan, artisanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("ARTISAN_NOT_FOUND", "Artisan not found")
			}
			return fmt.Errorf("failed to load artisan: %w", err)
		}

		candidate := models.Chat{UserID: p.ID, ArtisanID: artisanID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate)
		if res.Error != nil {
			return fmt.Errorf("failed to create chat: %w", res.Error)
		}
		created = res.RowsAffected == 1

		if err := tx.Where("user_id = ? AND artisan_id = ?", p.ID, artisanID).Take(&chat).Error; err != nil {
			return fmt.Errorf("failed to load chat: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &chat, created, nil
}

// SendMessage appends a message from the caller to a chat they belong to
func (s *ChatService) SendMessage(ctx context.Context, p models.Principal, chatID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("EMPTY_MESSAGE", "Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, invalid("MESSAGE_TOO_LONG", fmt.Sprintf("Message cannot exceed %d characters", models.MaxMessageLength))
	}

	var message models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The chat row lock orders concurrent appends to the same chat
		chat, err := loadChat(tx.Clauses(clause.Locking{Strength: "UPDATE"}), chatID)
		if err != nil {
			return err
		}
		if err := authorizeChat(chat, p); err != nil {
			return err
		}

		timestamp := s.now().UTC().Truncate(time.Microsecond)
		var last models.Message
		if err := tx.Where("chat_id = ?", chat.ID).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
			Order("id DESC").
			Limit(1).
			Find(&last).Error; err != nil {
			return fmt.Errorf("failed to load latest message: %w", err)
		}
		if last.ID != 0 && timestamp.Before(last.Timestamp) {
			timestamp = last.Timestamp
		}

		message = models.Message{
			ChatID:     chat.ID,
			SenderID:   p.ID,
			SenderType: p.Role,
			Content:    content,
			Timestamp:  timestamp,
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages returns a window of a chat log, oldest first
func (s *ChatService) ListMessages(ctx context.Context, p models.Principal, chatID uint, page MessagePage) (*MessageList, error) {
	db := s.db.WithContext(ctx)
	chat, err := loadChat(db, chatID)
	if err != nil {
		return nil, err
	}
	if err := authorizeChat(chat, p); err != nil {
		return nil, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	timestampCol := clause.Column{Name: "timestamp"}
	query := db.Where("chat_id = ?", chat.ID)
	if page.AfterID != 0 {
		var cursor models.Message
		if err := db.Where("chat_id = ?", chat.ID).Take(&cursor, page.AfterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalid("INVALID_CURSOR", "after_id does not refer to a message in this chat")
			}
			return nil, fmt.Errorf("failed to load cursor message: %w", err)
		}
		query = query.Where(clause.Or(
			clause.Gt{Column: timestampCol, Value: cursor.Timestamp},
			clause.And(
				clause.Eq{Column: timestampCol, Value: cursor.Timestamp},
				clause.Gt{Column: clause.Column{Name: "id"}, Value: cursor.ID},
			),
		))
	}

	var messages []models.Message
	if err := query.
		Order(clause.OrderByColumn{Column: timestampCol}).
		Order("id ASC").
		Limit(limit + 1).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	list := &MessageList{Chat: *chat, Messages: messages}
	if len(messages) > limit {
		list.Messages = messages[:limit]
		next := list.Messages[limit-1].ID
		list.NextAfterID = &next
	}
	if list.Messages == nil {
		list.Messages = []models.Message{}
	}
	return list, nil
}

// ListChatsFor returns the caller's chats, newest first, with the other
// party loaded
func (s *ChatService) ListChatsFor(ctx context.Context, p models.Principal) ([]models.Chat, error) {
	query := s.db.WithContext(ctx)
	switch p.Role {
	case models.RoleUser:
		query = query.Where("user_id = ?", p.ID).Preload("Artisan")
	case models.RoleArtisan:
		query = query.Where("artisan_id = ?", p.ID).Preload("User")
	default:
		return nil, unauthorized("FORBIDDEN", "Unknown role")
	}

	chats := []models.Chat{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	return chats, nil
}

// authorizeChat is the single access rule for chat reads and writes: users
// reach their own chats, artisans the chats addressed to them.
func authorizeChat(chat *models.Chat, p models.Principal) error {
	allowed := false
	switch p.Role {
	case models.RoleUser:
		allowed = chat.UserID == p.ID
	case models.RoleArtisan:
		allowed = chat.ArtisanID == p.ID
	}
	if !allowed {
		return unauthorized("FORBIDDEN", "You do not have access to this chat")
	}
	return nil
}

func loadChat(tx *gorm.DB, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := tx.Take(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("CHAT_NOT_FOUND", "Chat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	return &chat, nil
}
