package db

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/chat"
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// ChatRepository persists conversations and messages and signals the hub
// after every successful write, so standing subscriptions re-query.
type ChatRepository interface {
	chat.Store
}

type chatRepo struct {
	DB  *gorm.DB
	hub *chat.Hub
}

// NewChatRepo creates a new instance of ChatRepository
func NewChatRepo(db *GormDB, hub *chat.Hub) ChatRepository {
	return &chatRepo{DB: db.DB, hub: hub}
}

func (r *chatRepo) ConversationsFor(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.WithContext(ctx).
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Find(&conversations).Error
	return conversations, err
}

func (r *chatRepo) MessagesFor(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepo) UnreadFor(ctx context.Context, conversationID uuid.UUID, receiverID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, receiverID, false).
		Order("sent_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepo) UnreadCounts(ctx context.Context, userID uint) (map[uuid.UUID]int, error) {
	rows := []struct {
		ConversationID uuid.UUID
		Count          int
	}{}
	err := r.DB.WithContext(ctx).Model(&models.Message{}).
		Select("conversation_id, COUNT(*) as count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}

func (r *chatRepo) Profile(ctx context.Context, userID uint) (models.Participant, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.Participant{}, err
	}
	return models.Participant{
		DisplayName: user.DisplayName(),
		AvatarURL:   user.ThumbNailURL,
	}, nil
}

func (r *chatRepo) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	if err := r.DB.WithContext(ctx).Create(conversation).Error; err != nil {
		return err
	}
	r.publishConversations(conversation.ParticipantOneID, conversation.ParticipantTwoID)
	return nil
}

// CreateMessage stores the message with a server-assigned timestamp, so
// ordering never depends on client clocks.
func (r *chatRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	message.SentAt = time.Now().UTC()
	if err := r.DB.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	r.hub.Publish(chat.TopicMessages, message.ConversationID.String())
	r.publishConversations(message.SenderID, message.ReceiverID)
	return nil
}

func (r *chatRepo) TouchConversation(ctx context.Context, conversationID uuid.UUID, lastText string, lastAt time.Time) error {
	err := r.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_text": lastText,
			"last_message_at":   lastAt,
		}).Error
	if err != nil {
		return err
	}
	r.publishForConversation(ctx, conversationID)
	return nil
}

func (r *chatRepo) PatchParticipantInfo(ctx context.Context, conversationID uuid.UUID, userID uint, info models.Participant) error {
	var conversation models.Conversation
	if err := r.DB.WithContext(ctx).First(&conversation, "id = ?", conversationID).Error; err != nil {
		return err
	}
	if conversation.ParticipantInfo == nil {
		conversation.ParticipantInfo = models.ParticipantInfo{}
	}
	conversation.ParticipantInfo.Set(userID, info)
	err := r.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("participant_info", conversation.ParticipantInfo).Error
	if err != nil {
		return err
	}
	r.publishConversations(conversation.ParticipantOneID, conversation.ParticipantTwoID)
	return nil
}

func (r *chatRepo) MarkMessageRead(ctx context.Context, messageID uuid.UUID) error {
	var message models.Message
	if err := r.DB.WithContext(ctx).First(&message, "id = ?", messageID).Error; err != nil {
		return err
	}
	err := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	r.hub.Publish(chat.TopicMessages, message.ConversationID.String())
	r.publishConversations(message.SenderID, message.ReceiverID)
	return nil
}

func (r *chatRepo) Watch(topic chat.Topic, key string) (<-chan struct{}, func()) {
	return r.hub.Subscribe(topic, key)
}

func (r *chatRepo) publishConversations(userIDs ...uint) {
	for _, id := range userIDs {
		r.hub.Publish(chat.TopicConversations, strconv.FormatUint(uint64(id), 10))
	}
}

func (r *chatRepo) publishForConversation(ctx context.Context, conversationID uuid.UUID) {
	var conversation models.Conversation
	if err := r.DB.WithContext(ctx).First(&conversation, "id = ?", conversationID).Error; err != nil {
		return
	}
	r.publishConversations(conversation.ParticipantOneID, conversation.ParticipantTwoID)
}
