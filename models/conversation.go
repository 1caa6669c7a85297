package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Participant is the denormalized display profile cached on a conversation.
// It may be stale; the chat core repairs it lazily.
type Participant struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// ParticipantInfo maps a user id (as a decimal string, jsonb keys must be
// strings) to their cached profile.
type ParticipantInfo map[string]Participant

func (p ParticipantInfo) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ParticipantInfo) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = ParticipantInfo{}
		return nil
	default:
		return fmt.Errorf("unsupported participant info type %T", value)
	}
}

// Get looks up the cached profile for a user id
func (p ParticipantInfo) Get(userID uint) (Participant, bool) {
	v, ok := p[strconv.FormatUint(uint64(userID), 10)]
	return v, ok
}

// Set stores the cached profile for a user id
func (p ParticipantInfo) Set(userID uint, info Participant) {
	p[strconv.FormatUint(uint64(userID), 10)] = info
}

// Conversation pairs two users exchanging messages. A conversation is
// unique per unordered pair; uniqueness is enforced by the lookup in the
// chat core, not by the database.
type Conversation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantOneID uint            `gorm:"index;not null" json:"participant_one_id"`
	ParticipantTwoID uint            `gorm:"index;not null" json:"participant_two_id"`
	ParticipantInfo  ParticipantInfo `gorm:"type:jsonb" json:"participant_info"`
	LastMessageText  string          `json:"last_message_text"`
	LastMessageAt    *time.Time      `json:"last_message_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HasParticipant reports whether userID is one of the two participants
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the participant that is not userID
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}

// IsPair reports whether the conversation joins exactly the unordered pair {a, b}
func (c *Conversation) IsPair(a, b uint) bool {
	return (c.ParticipantOneID == a && c.ParticipantTwoID == b) ||
		(c.ParticipantOneID == b && c.ParticipantTwoID == a)
}

// ConversationView is a conversation decorated with the viewer's unread count
type ConversationView struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}
