package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
)

const (
	EventConversations = "conversations"
	EventMessages      = "messages"
	EventError         = "error"

	ActionSelect = "select"
	ActionClear  = "clear"
	ActionSend   = "send"
)

// Event is what a session pushes to its client.
type Event struct {
	Type           string                    `json:"type"`
	Conversations  []models.ConversationView `json:"conversations,omitempty"`
	TotalUnread    int                       `json:"total_unread"`
	ConversationID string                    `json:"conversation_id,omitempty"`
	Messages       []models.Message          `json:"messages,omitempty"`
	Error          string                    `json:"error,omitempty"`
}

// Command is what a client sends to its session.
type Command struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id,omitempty"`
	ReceiverID     uint   `json:"receiver_id,omitempty"`
	Text           string `json:"text,omitempty"`
}

// Notifier is told about sent messages so out-of-band delivery (push) can
// happen; it runs outside the send path and cannot fail it.
type Notifier interface {
	MessageSent(ctx context.Context, message *models.Message)
}

// Session bundles one user's synchronizer pair for the lifetime of a
// connection. Snapshots become events on a buffered channel; a slow
// consumer drops events rather than blocking the synchronizers, which is
// safe because every event carries a full snapshot.
type Session struct {
	user          *models.User
	Conversations *ConversationSync
	Messages      *MessageSync
	notifier      Notifier
	events        chan Event
}

func NewSession(store Store, user *models.User, notifier Notifier) *Session {
	s := &Session{
		user:     user,
		notifier: notifier,
		events:   make(chan Event, 32),
	}
	s.Conversations = NewConversationSync(store)
	s.Messages = NewMessageSync(store, s.Conversations)

	s.Conversations.OnSnapshot(func(snap ConversationSnapshot) {
		s.push(Event{
			Type:          EventConversations,
			Conversations: snap.Conversations,
			TotalUnread:   snap.TotalUnread,
		})
	})
	s.Messages.OnSnapshot(func(snap MessageSnapshot) {
		s.push(Event{
			Type:           EventMessages,
			ConversationID: snap.ConversationID.String(),
			Messages:       snap.Messages,
		})
	})
	return s
}

func (s *Session) push(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Events is the stream the transport writes to the client.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Start opens the conversation subscription for the session's user.
func (s *Session) Start() error {
	return s.Conversations.Start(s.user.ID)
}

// Stop tears down both synchronizers. Call on sign-out or disconnect.
func (s *Session) Stop() {
	s.Messages.Clear()
	s.Conversations.Stop()
}

// Handle dispatches one client command.
func (s *Session) Handle(ctx context.Context, cmd Command) error {
	switch cmd.Action {
	case ActionSelect:
		id, err := uuid.Parse(cmd.ConversationID)
		if err != nil {
			return ErrConversationNotFound
		}
		return s.Conversations.Select(id)
	case ActionClear:
		s.Conversations.ClearSelection()
		return nil
	case ActionSend:
		message, err := s.Messages.Send(ctx, cmd.ReceiverID, cmd.Text)
		if err != nil {
			return err
		}
		if s.notifier != nil {
			go s.notifier.MessageSent(context.Background(), message)
		}
		return nil
	default:
		return fmt.Errorf("chat: unknown action %q", cmd.Action)
	}
}
