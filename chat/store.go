package chat

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
)

// Store is the persistence boundary of the messaging core. The database
// owns conversations and messages; the synchronizers hold only transient
// in-memory projections rebuilt from these queries.
//
// Watch is the standing-subscription primitive: a change signal for
// (topic, key) tells the consumer to re-run its query. Timestamps on
// CreateMessage and TouchConversation are assigned by the store, not the
// caller.
type Store interface {
	// ConversationsFor lists every conversation userID participates in.
	ConversationsFor(ctx context.Context, userID uint) ([]models.Conversation, error)
	// MessagesFor lists a conversation's messages ordered by SentAt ascending.
	MessagesFor(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	// UnreadFor lists unread messages addressed to receiverID in a conversation.
	UnreadFor(ctx context.Context, conversationID uuid.UUID, receiverID uint) ([]models.Message, error)
	// UnreadCounts returns per-conversation unread counts for userID.
	UnreadCounts(ctx context.Context, userID uint) (map[uuid.UUID]int, error)
	// Profile fetches the current display profile for a user.
	Profile(ctx context.Context, userID uint) (models.Participant, error)

	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	CreateMessage(ctx context.Context, message *models.Message) error
	// TouchConversation updates the last-message pointer fields only.
	TouchConversation(ctx context.Context, conversationID uuid.UUID, lastText string, lastAt time.Time) error
	// PatchParticipantInfo merges one participant's cached profile in place.
	PatchParticipantInfo(ctx context.Context, conversationID uuid.UUID, userID uint, info models.Participant) error
	// MarkMessageRead flips IsRead to true; it never reverses.
	MarkMessageRead(ctx context.Context, messageID uuid.UUID) error

	Watch(topic Topic, key string) (<-chan struct{}, func())
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
