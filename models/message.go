package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one directed text communication inside a conversation.
// Immutable after creation except for IsRead flipping false -> true.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	ReceiverID     uint      `gorm:"not null;index" json:"receiver_id"`
	Text           string    `gorm:"type:text" json:"text"`
	SentAt         time.Time `gorm:"index" json:"sent_at"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Text       string `json:"text"`
}
